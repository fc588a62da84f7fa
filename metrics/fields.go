package metrics

// Derived metric identifiers.
const (
	AverageViewsPerVideo    = "averageViewsPerVideo"
	SubscribersPerVideo     = "subscribersPerVideo"
	ViewsPerSubscriber      = "viewsPerSubscriber"
	ChannelAgeInDays        = "channelAgeInDays"
	UploadsPerWeek          = "uploadsPerWeek"
	SubsGainedPerDay        = "subsGainedPerDay"
	SubsGainedPerMonth      = "subsGainedPerMonth"
	SubsGainedPerYear       = "subsGainedPerYear"
	ViewsGainedPerDay       = "viewsGainedPerDay"
	ViralIndex              = "viralIndex"
	ShortsCount             = "shortsCount"
	LongformCount           = "longformCount"
	TotalShortsDuration     = "totalShortsDuration"
	EstimatedShortsViews    = "estimatedShortsViews"
	EstimatedLongformViews  = "estimatedLongformViews"
	ShortsViewsPercentage   = "shortsViewsPercentage"
	LongformViewsPercentage = "longformViewsPercentage"
)

// Primary channel-data field identifiers the dependency table refers to.
// They match the catalog's field names so callers can merge the result
// directly into a fetch selection.
const (
	fieldSubscriberCount   = "subscriberCount"
	fieldViewCount         = "viewCount"
	fieldVideoCount        = "videoCount"
	fieldPublishedAt       = "publishedAt"
	fieldUploadsPlaylistID = "uploadsPlaylistId"
)

// FieldSet selects derived metrics by identifier.
type FieldSet map[string]bool

// NewFieldSet builds a set from the given metric identifiers.
func NewFieldSet(names ...string) FieldSet {
	s := make(FieldSet, len(names))
	for _, n := range names {
		s[n] = true
	}
	return s
}

// Has reports whether the metric is requested.
func (s FieldSet) Has(name string) bool {
	return s[name]
}

// requires maps each derived metric to the primary channel-data fields its
// formula consumes. It is the single source of truth for widening a fetch
// selection: requesting a metric implies fetching every field listed here.
var requires = map[string][]string{
	AverageViewsPerVideo:    {fieldViewCount, fieldVideoCount},
	SubscribersPerVideo:     {fieldSubscriberCount, fieldViewCount},
	ViewsPerSubscriber:      {fieldViewCount, fieldSubscriberCount},
	ChannelAgeInDays:        {fieldPublishedAt},
	UploadsPerWeek:          {fieldVideoCount, fieldPublishedAt},
	SubsGainedPerDay:        {fieldSubscriberCount, fieldPublishedAt},
	SubsGainedPerMonth:      {fieldSubscriberCount, fieldPublishedAt},
	SubsGainedPerYear:       {fieldSubscriberCount, fieldPublishedAt},
	ViewsGainedPerDay:       {fieldViewCount, fieldPublishedAt},
	ViralIndex:              {fieldSubscriberCount, fieldViewCount, fieldVideoCount, fieldPublishedAt},
	ShortsCount:             {fieldUploadsPlaylistID},
	LongformCount:           {fieldVideoCount, fieldUploadsPlaylistID},
	TotalShortsDuration:     {fieldUploadsPlaylistID},
	EstimatedShortsViews:    {fieldViewCount, fieldUploadsPlaylistID},
	EstimatedLongformViews:  {fieldViewCount, fieldUploadsPlaylistID},
	ShortsViewsPercentage:   {fieldViewCount, fieldUploadsPlaylistID},
	LongformViewsPercentage: {fieldViewCount, fieldUploadsPlaylistID},
}

// classificationMetrics marks the metrics that consume an upload
// classification.
var classificationMetrics = map[string]bool{
	ShortsCount:             true,
	LongformCount:           true,
	TotalShortsDuration:     true,
	EstimatedShortsViews:    true,
	EstimatedLongformViews:  true,
	ShortsViewsPercentage:   true,
	LongformViewsPercentage: true,
}

// All returns every defined metric identifier.
func All() []string {
	names := make([]string, 0, len(requires))
	for n := range requires {
		names = append(names, n)
	}
	return names
}

// IsMetric reports whether name is a defined derived metric.
func IsMetric(name string) bool {
	_, ok := requires[name]
	return ok
}

// RequiredFields returns the primary channel-data fields the requested
// metrics depend on.
func RequiredFields(requested FieldSet) []string {
	seen := make(map[string]bool)
	var fields []string
	for name := range requested {
		for _, f := range requires[name] {
			if !seen[f] {
				seen[f] = true
				fields = append(fields, f)
			}
		}
	}
	return fields
}

// NeedsClassification reports whether any requested metric consumes an
// upload classification.
func NeedsClassification(requested FieldSet) bool {
	for name := range requested {
		if classificationMetrics[name] {
			return true
		}
	}
	return false
}
