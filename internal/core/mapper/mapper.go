// Package mapper converts between domain.SavedContent and its persisted
// record layout.
//
// The layout is shared with the quick-save writer, which appends records to
// the same storage from outside the process, so the encodings here are a
// wire contract:
//
//   - metadata is a JSON object string; an empty map is stored as no value
//   - the embedding vector is raw native-endian IEEE-754 float32s with no
//     length prefix; an empty vector is stored as no value
//   - URLs are stored in string form; the save path always writes absolute
//     URLs, but any non-empty string url.Parse accepts is read back as-is
//
// Both directions are total. Bad stored data falls back to safe values
// instead of failing.
package mapper

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"math"
	"net/url"
	"time"

	"github.com/custodia-labs/stash/internal/core/domain"
)

// float32Size is the byte width of one embedding component.
const float32Size = 4

// Record is the persisted form of a SavedContent.
// Nil pointer and nil slice fields mean "no value".
type Record struct {
	ID                 string
	Title              string
	URLString          string
	CategoryCode       string
	CreatedAt          time.Time
	ThumbnailURLString *string
	Summary            *string
	MetadataJSON       *string
	EmbeddingBytes     []byte
}

// invalidURL returns a fresh copy of the sentinel that replaces an
// unparseable stored URL.
func invalidURL() *url.URL {
	return &url.URL{Scheme: "https", Host: "invalid.url"}
}

// ToDomain decodes a persisted record.
func ToDomain(r Record) domain.SavedContent {
	category := domain.ContentCategory(r.CategoryCode)
	if !category.IsValid() {
		category = domain.CategoryWeb
	}

	var summary *string
	if r.Summary != nil {
		s := *r.Summary
		summary = &s
	}

	return domain.SavedContent{
		ID:              r.ID,
		Title:           r.Title,
		SourceURL:       decodeSourceURL(r.URLString),
		Category:        category,
		CreatedAt:       r.CreatedAt,
		ThumbnailURL:    decodeOptionalURL(r.ThumbnailURLString),
		Summary:         summary,
		Metadata:        DecodeMetadata(r.MetadataJSON),
		EmbeddingVector: DecodeEmbedding(r.EmbeddingBytes),
	}
}

// ToRecord encodes a SavedContent for persistence.
func ToRecord(c *domain.SavedContent) Record {
	var summary *string
	if c.Summary != nil {
		s := *c.Summary
		summary = &s
	}

	return Record{
		ID:                 c.ID,
		Title:              c.Title,
		URLString:          c.URLString(),
		CategoryCode:       c.Category.String(),
		CreatedAt:          c.CreatedAt,
		ThumbnailURLString: encodeOptionalURL(c.ThumbnailURL),
		Summary:            summary,
		MetadataJSON:       EncodeMetadata(c.Metadata),
		EmbeddingBytes:     EncodeEmbedding(c.EmbeddingVector),
	}
}

// EncodeMetadata renders metadata as a JSON object with sorted keys.
// An empty map encodes to nil.
func EncodeMetadata(metadata map[string]string) *string {
	if len(metadata) == 0 {
		return nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(metadata); err != nil {
		return nil
	}
	s := string(bytes.TrimRight(buf.Bytes(), "\n"))
	return &s
}

// DecodeMetadata parses a JSON object string. Nil, empty, null or malformed
// input decodes to an empty, non-nil map.
func DecodeMetadata(raw *string) map[string]string {
	metadata := make(map[string]string)
	if raw == nil || *raw == "" {
		return metadata
	}
	var decoded map[string]string
	if err := json.Unmarshal([]byte(*raw), &decoded); err != nil {
		return metadata
	}
	for k, v := range decoded {
		metadata[k] = v
	}
	return metadata
}

// EncodeEmbedding lays the vector out as consecutive native-endian float32s.
// An empty vector encodes to nil.
func EncodeEmbedding(vector []float32) []byte {
	if len(vector) == 0 {
		return nil
	}
	buf := make([]byte, len(vector)*float32Size)
	for i, f := range vector {
		binary.NativeEndian.PutUint32(buf[i*float32Size:], math.Float32bits(f))
	}
	return buf
}

// DecodeEmbedding reads a vector written by EncodeEmbedding. Empty input or
// a length that is not a multiple of four decodes to nil.
func DecodeEmbedding(data []byte) []float32 {
	if len(data) == 0 || len(data)%float32Size != 0 {
		return nil
	}
	vector := make([]float32, len(data)/float32Size)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.NativeEndian.Uint32(data[i*float32Size:]))
	}
	return vector
}

func decodeSourceURL(raw string) *url.URL {
	u, err := parseStored(raw)
	if err != nil {
		return invalidURL()
	}
	return u
}

func decodeOptionalURL(raw *string) *url.URL {
	if raw == nil {
		return nil
	}
	u, err := parseStored(*raw)
	if err != nil {
		return nil
	}
	return u
}

func encodeOptionalURL(u *url.URL) *string {
	if u == nil {
		return nil
	}
	s := u.String()
	return &s
}

// parseStored accepts any non-empty string url.Parse accepts. Relative
// references such as "not a url" are kept rather than replaced, so the
// stored text survives a round trip and classifies as web.
func parseStored(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, domain.ErrInvalidInput
	}
	return url.Parse(raw)
}
