package youtube

// Channel data field identifiers, grouped by the API part that carries them.
// These are the names callers use to select what a collection cycle fetches;
// snapshot fields land in a Stats, everything else in a StaticProfile.
const (
	// snippet
	FieldTitle            = "title"
	FieldDescription      = "description"
	FieldCustomURL        = "customUrl"
	FieldPublishedAt      = "publishedAt"
	FieldCountry          = "country"
	FieldDefaultLanguage  = "defaultLanguage"
	FieldThumbnailURL     = "thumbnailUrl"
	FieldThumbnailDefault = "thumbnailDefault"
	FieldThumbnailMedium  = "thumbnailMedium"
	FieldThumbnailHigh    = "thumbnailHigh"

	// statistics
	FieldSubscriberCount       = "subscriberCount"
	FieldViewCount             = "viewCount"
	FieldVideoCount            = "videoCount"
	FieldHiddenSubscriberCount = "hiddenSubscriberCount"

	// brandingSettings
	FieldKeywords            = "keywords"
	FieldBannerExternalURL   = "bannerExternalUrl"
	FieldUnsubscribedTrailer = "unsubscribedTrailer"

	// contentDetails
	FieldUploadsPlaylistID = "uploadsPlaylistId"

	// topicDetails
	FieldTopicIDs        = "topicIds"
	FieldTopicCategories = "topicCategories"

	// status
	FieldPrivacyStatus           = "privacyStatus"
	FieldIsLinked                = "isLinked"
	FieldLongUploadsStatus       = "longUploadsStatus"
	FieldMadeForKids             = "madeForKids"
	FieldSelfDeclaredMadeForKids = "selfDeclaredMadeForKids"
)

// FieldSet selects channel data fields by identifier.
type FieldSet map[string]bool

// NewFieldSet builds a set from the given field identifiers.
func NewFieldSet(fields ...string) FieldSet {
	s := make(FieldSet, len(fields))
	for _, f := range fields {
		s[f] = true
	}
	return s
}

// Has reports whether the field is selected.
func (s FieldSet) Has(field string) bool {
	return s[field]
}

// Add selects the given fields.
func (s FieldSet) Add(fields ...string) {
	for _, f := range fields {
		s[f] = true
	}
}

// Clone returns an independent copy of the set.
func (s FieldSet) Clone() FieldSet {
	c := make(FieldSet, len(s))
	for f := range s {
		c[f] = true
	}
	return c
}

// Names returns the selected field identifiers in unspecified order.
func (s FieldSet) Names() []string {
	names := make([]string, 0, len(s))
	for f := range s {
		names = append(names, f)
	}
	return names
}

var fieldsByPart = map[string][]string{
	"snippet": {
		FieldTitle, FieldDescription, FieldCustomURL, FieldPublishedAt,
		FieldCountry, FieldDefaultLanguage, FieldThumbnailURL,
		FieldThumbnailDefault, FieldThumbnailMedium, FieldThumbnailHigh,
	},
	"statistics": {
		FieldSubscriberCount, FieldViewCount, FieldVideoCount,
		FieldHiddenSubscriberCount,
	},
	"brandingSettings": {
		FieldKeywords, FieldBannerExternalURL, FieldUnsubscribedTrailer,
	},
	"contentDetails": {FieldUploadsPlaylistID},
	"topicDetails":   {FieldTopicIDs, FieldTopicCategories},
	"status": {
		FieldPrivacyStatus, FieldIsLinked, FieldLongUploadsStatus,
		FieldMadeForKids, FieldSelfDeclaredMadeForKids,
	},
}

// partOrder keeps the part list deterministic across calls.
var partOrder = []string{
	"snippet", "statistics", "brandingSettings",
	"contentDetails", "topicDetails", "status",
}

// partsFor maps a field selection to the minimal set of API parts.
func partsFor(fields FieldSet) []string {
	var parts []string
	for _, part := range partOrder {
		for _, f := range fieldsByPart[part] {
			if fields.Has(f) {
				parts = append(parts, part)
				break
			}
		}
	}
	return parts
}
