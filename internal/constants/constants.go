package constants

const (
	// Label constraints for client labels on panels
	MinLabelLength = 3
	MaxLabelLength = 32

	// LabelSeparator joins the base label with the inbound identifier
	LabelSeparator = "-"

	// LabelSuffixLength is the length of the random suffix appended to base labels
	LabelSuffixLength = 4

	// Traffic constants
	BytesInGB = 1024 * 1024 * 1024

	// Duration constants
	MillisecondsInDay = 24 * 60 * 60 * 1000

	// Network constants
	DefaultTimeout          = 30
	DefaultRetryCount       = 3
	DefaultRetryWaitTime    = 5
	DefaultRetryMaxWaitTime = 20

	// Cache constants
	CacheExpiration      = 30 // minutes
	CacheCleanupInterval = 10 // minutes

	// Subscription constants
	SubIDLength = 16

	// Formatting constants
	TimestampFormat = "2006-01-02 15:04:05"
	DateFormat      = "2006-01-02"
)
