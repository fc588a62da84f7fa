package youtube

import (
	"context"
	"time"

	yt "google.golang.org/api/youtube/v3"

	"vidhunt/retry"
)

// StaticProfile holds the slow-changing attributes of a channel. It is
// overwritten wholesale on every successful collection cycle.
type StaticProfile struct {
	Title             string `json:"title,omitempty"`
	Description       string `json:"description,omitempty"`
	CustomURL         string `json:"customUrl,omitempty"`
	PublishedAt       string `json:"publishedAt,omitempty"`
	Country           string `json:"country,omitempty"`
	DefaultLanguage   string `json:"defaultLanguage,omitempty"`
	ThumbnailURL      string `json:"thumbnailUrl,omitempty"`
	ThumbnailDefault  string `json:"thumbnailDefault,omitempty"`
	ThumbnailMedium   string `json:"thumbnailMedium,omitempty"`
	ThumbnailHigh     string `json:"thumbnailHigh,omitempty"`
	Keywords          string `json:"keywords,omitempty"`
	BannerExternalURL string `json:"bannerExternalUrl,omitempty"`

	UnsubscribedTrailer string   `json:"unsubscribedTrailer,omitempty"`
	UploadsPlaylistID   string   `json:"uploadsPlaylistId,omitempty"`
	TopicIDs            []string `json:"topicIds,omitempty"`
	TopicCategories     []string `json:"topicCategories,omitempty"`

	PrivacyStatus           string `json:"privacyStatus,omitempty"`
	IsLinked                *bool  `json:"isLinked,omitempty"`
	LongUploadsStatus       string `json:"longUploadsStatus,omitempty"`
	MadeForKids             *bool  `json:"madeForKids,omitempty"`
	SelfDeclaredMadeForKids *bool  `json:"selfDeclaredMadeForKids,omitempty"`
}

// Stats is a point-in-time snapshot of the primary counters. Nil pointers
// mean the field was not requested or not reported, as opposed to zero.
type Stats struct {
	Timestamp             time.Time
	SubscriberCount       *int64
	ViewCount             *int64
	VideoCount            *int64
	HiddenSubscriberCount *bool
}

// FetchChannel retrieves the selected fields for one channel, split into the
// static profile and the statistics snapshot. Only the API parts the field
// selection touches are requested.
func (c *Client) FetchChannel(ctx context.Context, channelID string, fields FieldSet) (*StaticProfile, *Stats, error) {
	parts := partsFor(fields)
	if len(parts) == 0 {
		parts = []string{"snippet"}
	}

	profile := &StaticProfile{}
	stats := &Stats{Timestamp: time.Now().UTC()}

	err := retry.Do(ctx, c.RetryConfig, apiErrorClassifier, func(ctx context.Context) error {
		if err := c.wait(ctx); err != nil {
			return err
		}
		resp, err := c.service.Channels.List(parts).
			Id(channelID).
			Context(ctx).
			Do()
		c.charge(quotaList)
		if err != nil {
			return classifyAPIError(err)
		}
		if len(resp.Items) == 0 {
			return ErrChannelNotFound
		}

		ch := resp.Items[0]
		if ch.Snippet != nil {
			sn := ch.Snippet
			setString(fields, FieldTitle, &profile.Title, sn.Title)
			setString(fields, FieldDescription, &profile.Description, sn.Description)
			setString(fields, FieldCustomURL, &profile.CustomURL, sn.CustomUrl)
			setString(fields, FieldPublishedAt, &profile.PublishedAt, sn.PublishedAt)
			setString(fields, FieldCountry, &profile.Country, sn.Country)
			setString(fields, FieldDefaultLanguage, &profile.DefaultLanguage, sn.DefaultLanguage)
			if sn.Thumbnails != nil {
				t := sn.Thumbnails
				if t.Default != nil {
					setString(fields, FieldThumbnailDefault, &profile.ThumbnailDefault, t.Default.Url)
				}
				if t.Medium != nil {
					setString(fields, FieldThumbnailMedium, &profile.ThumbnailMedium, t.Medium.Url)
				}
				if t.High != nil {
					setString(fields, FieldThumbnailHigh, &profile.ThumbnailHigh, t.High.Url)
				}
				if fields.Has(FieldThumbnailURL) {
					profile.ThumbnailURL = bestThumbnail(t)
				}
			}
		}
		if ch.Statistics != nil {
			st := ch.Statistics
			if fields.Has(FieldSubscriberCount) {
				stats.SubscriberCount = int64Ptr(int64(st.SubscriberCount))
			}
			if fields.Has(FieldViewCount) {
				stats.ViewCount = int64Ptr(int64(st.ViewCount))
			}
			if fields.Has(FieldVideoCount) {
				stats.VideoCount = int64Ptr(int64(st.VideoCount))
			}
			if fields.Has(FieldHiddenSubscriberCount) {
				stats.HiddenSubscriberCount = boolPtr(st.HiddenSubscriberCount)
			}
		}
		if ch.BrandingSettings != nil && ch.BrandingSettings.Channel != nil {
			setString(fields, FieldKeywords, &profile.Keywords, ch.BrandingSettings.Channel.Keywords)
			setString(fields, FieldUnsubscribedTrailer, &profile.UnsubscribedTrailer, ch.BrandingSettings.Channel.UnsubscribedTrailer)
		}
		if ch.BrandingSettings != nil && ch.BrandingSettings.Image != nil {
			setString(fields, FieldBannerExternalURL, &profile.BannerExternalURL, ch.BrandingSettings.Image.BannerExternalUrl)
		}
		if ch.ContentDetails != nil && ch.ContentDetails.RelatedPlaylists != nil {
			setString(fields, FieldUploadsPlaylistID, &profile.UploadsPlaylistID, ch.ContentDetails.RelatedPlaylists.Uploads)
		}
		if ch.TopicDetails != nil {
			if fields.Has(FieldTopicIDs) {
				profile.TopicIDs = ch.TopicDetails.TopicIds
			}
			if fields.Has(FieldTopicCategories) {
				profile.TopicCategories = ch.TopicDetails.TopicCategories
			}
		}
		if ch.Status != nil {
			setString(fields, FieldPrivacyStatus, &profile.PrivacyStatus, ch.Status.PrivacyStatus)
			setString(fields, FieldLongUploadsStatus, &profile.LongUploadsStatus, ch.Status.LongUploadsStatus)
			if fields.Has(FieldIsLinked) {
				profile.IsLinked = boolPtr(ch.Status.IsLinked)
			}
			if fields.Has(FieldMadeForKids) {
				profile.MadeForKids = boolPtr(ch.Status.MadeForKids)
			}
			if fields.Has(FieldSelfDeclaredMadeForKids) {
				profile.SelfDeclaredMadeForKids = boolPtr(ch.Status.SelfDeclaredMadeForKids)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return profile, stats, nil
}

func setString(fields FieldSet, field string, dst *string, v string) {
	if fields.Has(field) {
		*dst = v
	}
}

// bestThumbnail picks the highest-resolution variant available.
func bestThumbnail(t *yt.ThumbnailDetails) string {
	switch {
	case t.Maxres != nil:
		return t.Maxres.Url
	case t.High != nil:
		return t.High.Url
	case t.Medium != nil:
		return t.Medium.Url
	case t.Default != nil:
		return t.Default.Url
	}
	return ""
}

func int64Ptr(v int64) *int64 { return &v }
func boolPtr(v bool) *bool    { return &v }
