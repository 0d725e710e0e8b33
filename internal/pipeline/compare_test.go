package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkmathur/partsrecon/constants"
	"github.com/nkmathur/partsrecon/internal/common"
)

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCompareEndToEnd(t *testing.T) {
	dir := t.TempDir()
	est := writeDoc(t, dir, "estimate.txt", `SERVICE ESTIMATE
AB1234 Brake Pad Set 1,500.00
CD5678 Oil Filter 350.00
Total 1,850.00
`)
	bill := writeDoc(t, dir, "bill.txt", `FINAL BILL
AB1234 Brake Pad Set 1,750.00
EF9012 Wiper Blade 450.00
Total 2,200.00
`)

	c := NewComparator(nil, nil, nil, nil)
	result, err := c.Compare(context.Background(), est, bill)
	require.NoError(t, err)

	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", result.ID.String())
	assert.Equal(t, 2, result.EstimateCount)
	assert.Equal(t, 2, result.BillCount)
	require.Len(t, result.Results, 3)

	byKey := map[string]constants.Status{}
	for _, r := range result.Results {
		byKey[r.Key] = r.Status
	}
	assert.Equal(t, constants.StatusIncreased, byKey["AB1234"])
	assert.Equal(t, constants.StatusRemoved, byKey["CD5678"])
	assert.Equal(t, constants.StatusNew, byKey["EF9012"])

	assert.Equal(t, 1, result.Buckets[constants.BucketIncreased])
	assert.Equal(t, 1, result.Buckets[constants.BucketRemoved])
	assert.Equal(t, 1, result.Buckets[constants.BucketNew])
	assert.Equal(t, 0, result.SameCount)
}

func TestCompareEmptyEstimate(t *testing.T) {
	dir := t.TempDir()
	est := writeDoc(t, dir, "estimate.txt", "no structured rows in here\nat all, sorry\n")
	bill := writeDoc(t, dir, "bill.txt", "AB1234 Brake Pad Set 1,750.00\n")

	c := NewComparator(nil, nil, nil, nil)
	_, err := c.Compare(context.Background(), est, bill)

	require.ErrorIs(t, err, common.ErrNoUsableData)
	assert.Contains(t, err.Error(), "estimate")
}

func TestCompareMissingFile(t *testing.T) {
	dir := t.TempDir()
	bill := writeDoc(t, dir, "bill.txt", "AB1234 Brake Pad Set 1,750.00\n")

	c := NewComparator(nil, nil, nil, nil)
	_, err := c.Compare(context.Background(), filepath.Join(dir, "missing.txt"), bill)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "estimate")
}

func TestCompareUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	est := writeDoc(t, dir, "estimate.docx", "whatever")
	bill := writeDoc(t, dir, "bill.txt", "AB1234 Brake Pad Set 1,750.00\n")

	c := NewComparator(nil, nil, nil, nil)
	_, err := c.Compare(context.Background(), est, bill)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}
