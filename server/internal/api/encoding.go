package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/gzhttp"
	"github.com/munnerz/goautoneg"
)

// ContentTypeCBOR is negotiated through the Accept header.
const ContentTypeCBOR = "application/cbor"

// cborMode encodes with Core Deterministic Encoding so the same report always
// produces the same bytes. Field names follow the json struct tags.
var cborMode cbor.EncMode

func init() {
	var err error
	cborMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("api: CBOR encoder initialization failed: " + err.Error())
	}
}

const contentTypeJSON = "application/json"

// gzipETagSuffix marks the ETag of a gzip-encoded body.
const gzipETagSuffix = "-gzip"

// wantsCBOR reports whether the Accept header ranks CBOR strictly above JSON.
// A missing header, a tie or q=0 for CBOR all keep the JSON default.
func wantsCBOR(r *http.Request) bool {
	header := r.Header.Get("Accept")
	if header == "" {
		return false
	}
	clauses := goautoneg.ParseAccept(header)
	cq := quality(clauses, ContentTypeCBOR)
	return cq > 0 && cq > quality(clauses, contentTypeJSON)
}

// quality returns the q-value of the most specific media range matching
// mediaType, or 0 when no range matches.
func quality(clauses []goautoneg.Accept, mediaType string) float64 {
	typ, sub, _ := strings.Cut(mediaType, "/")
	best, q := -1, 0.0
	for _, c := range clauses {
		var rank int
		switch {
		case c.Type == typ && c.SubType == sub:
			rank = 2
		case c.Type == typ && c.SubType == "*":
			rank = 1
		case c.Type == "*" && c.SubType == "*":
			rank = 0
		default:
			continue
		}
		if rank > best {
			best, q = rank, c.Q
		}
	}
	return q
}

func cborResp(w http.ResponseWriter, code int, v interface{}) {
	data, err := cborMode.Marshal(v)
	if err != nil {
		jsonErr(w, http.StatusInternalServerError, "encode cbor: "+err.Error())
		return
	}
	w.Header().Set("Content-Type", ContentTypeCBOR)
	w.WriteHeader(code)
	w.Write(data) //nolint:errcheck
}

// Compress wraps h with gzip response compression for clients that send
// Accept-Encoding: gzip. Small bodies are passed through uncompressed.
// Compressed responses get gzipETagSuffix appended to their ETag so the two
// encodings never share a strong validator.
func Compress(h http.Handler) (http.Handler, error) {
	wrap, err := gzhttp.NewWrapper(gzhttp.SuffixETag(gzipETagSuffix))
	if err != nil {
		return nil, fmt.Errorf("api: gzip wrapper: %w", err)
	}
	return wrap(h), nil
}
