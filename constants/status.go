package constants

// Status is the classification outcome of reconciling one key.
type Status string

// Stable values (these exact strings appear in JSON payloads and exports).
const (
	StatusNew       Status = "NEW"       // key present only on the bill
	StatusRemoved   Status = "REMOVED"   // key present only on the estimate
	StatusIncreased Status = "INCREASED" // bill amount > estimate amount
	StatusReduced   Status = "REDUCED"   // bill amount < estimate amount
	StatusSame      Status = "SAME"      // equal within the comparison epsilon
)

// Bucket is the export grouping for a status. StatusSame has no bucket.
type Bucket string

const (
	BucketIncreased Bucket = "increased"
	BucketReduced   Bucket = "reduced"
	BucketNew       Bucket = "new"
	BucketRemoved   Bucket = "removed"
)

// BucketForStatus maps a status to its export bucket. The second return is
// false for StatusSame, which is reported but not bucketed.
func BucketForStatus(s Status) (Bucket, bool) {
	switch s {
	case StatusNew:
		return BucketNew, true
	case StatusRemoved:
		return BucketRemoved, true
	case StatusIncreased:
		return BucketIncreased, true
	case StatusReduced:
		return BucketReduced, true
	default:
		return "", false
	}
}

// Label returns the human-readable form used in reports.
func (s Status) Label() string {
	switch s {
	case StatusNew:
		return "New Part"
	case StatusRemoved:
		return "Removed"
	case StatusIncreased:
		return "Increased"
	case StatusReduced:
		return "Reduced"
	case StatusSame:
		return "Same"
	default:
		return string(s)
	}
}
