package codec

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexframe/lexframe/store"
)

func TestFileBlobStore_PutThenGetRoundTrips(t *testing.T) {
	blobs, err := NewFileBlobStore(t.TempDir())
	require.NoError(t, err)

	uri, err := blobs.Put(context.Background(), "doc-1.txt", []byte("hello contract"))
	require.NoError(t, err)
	assert.Contains(t, uri, "file://")

	got, err := blobs.Get(context.Background(), uri)
	require.NoError(t, err)
	assert.Equal(t, "hello contract", string(got))
}

func TestFileBlobStore_GetUnknownURIErrors(t *testing.T) {
	bs, err := NewFileBlobStore(t.TempDir())
	require.NoError(t, err)

	_, err = bs.Get(context.Background(), filePrefix+"/nonexistent/path.txt")
	assert.Error(t, err)
}

func TestTextExtractor_PlainTextPassthroughForUnrecognizedExtension(t *testing.T) {
	bs, err := NewFileBlobStore(t.TempDir())
	require.NoError(t, err)
	uri, err := bs.Put(context.Background(), "notes.txt", []byte("plain contract text"))
	require.NoError(t, err)

	extractor := NewTextExtractor(bs)
	text, err := extractor.ExtractText(context.Background(), uri)
	require.NoError(t, err)
	assert.Equal(t, "plain contract text", text)
}

func TestRenderer_RenderComplianceReportProducesAValidXLSXPackage(t *testing.T) {
	r := NewRenderer()
	contract := &store.Contract{Title: "NDA"}
	rules := []*store.ComplianceRule{
		{RuleID: "GDPR-5", Category: "data_retention", Severity: "high", Text: "Personal data must not be retained longer than necessary."},
	}

	data, err := r.RenderComplianceReport(context.Background(), contract, rules)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	// XLSX files are zip packages; the zip local-file-header magic bytes
	// are "PK\x03\x04".
	assert.Equal(t, []byte("PK\x03\x04"), data[:4])
}

func TestRenderer_RenderMemoProducesNonEmptyDocxBytes(t *testing.T) {
	r := NewRenderer()
	risk := 0.42
	contract := &store.Contract{Title: "MSA", Parties: []store.Party{{Name: "Acme"}}, OverallRiskScore: &risk}
	notes := "standard market terms"
	clauses := []*store.Clause{{Type: "termination", Notes: &notes}}

	data, err := r.RenderMemo(context.Background(), contract, clauses)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, []byte("PK\x03\x04"), data[:4])
}
