// Package metrics derives growth and content-mix metrics from a channel's
// primary statistics. Derivation is a pure function of its inputs: the same
// snapshot, classification, request set, and reference time always produce
// the same output.
package metrics

import (
	"math"
	"time"
)

// Inputs carries the primary counters a derivation reads. Nil pointers mean
// the counter was not collected; every formula that touches a missing
// counter is silently suppressed.
type Inputs struct {
	SubscriberCount *int64
	ViewCount       *int64
	VideoCount      *int64
}

// Classification is the short-form/long-form partition of a channel's
// analyzed uploads, as produced by the content classifier.
type Classification struct {
	ShortsCount     int
	TotalAnalyzed   int
	ShortsViewTotal int64
}

// Derived holds the computed metrics. Fields are pointers so a metric that
// was not requested, or whose numeric preconditions fail, is absent from
// the serialized snapshot rather than zero.
type Derived struct {
	AverageViewsPerVideo    *int64   `json:"averageViewsPerVideo,omitempty"`
	SubscribersPerVideo     *float64 `json:"subscribersPerVideo,omitempty"`
	ViewsPerSubscriber      *float64 `json:"viewsPerSubscriber,omitempty"`
	ChannelAgeInDays        *int64   `json:"channelAgeInDays,omitempty"`
	UploadsPerWeek          *float64 `json:"uploadsPerWeek,omitempty"`
	SubsGainedPerDay        *int64   `json:"subsGainedPerDay,omitempty"`
	SubsGainedPerMonth      *int64   `json:"subsGainedPerMonth,omitempty"`
	SubsGainedPerYear       *int64   `json:"subsGainedPerYear,omitempty"`
	ViewsGainedPerDay       *int64   `json:"viewsGainedPerDay,omitempty"`
	ViralIndex              *int64   `json:"viralIndex,omitempty"`
	ShortsCount             *int64   `json:"shortsCount,omitempty"`
	LongformCount           *int64   `json:"longformCount,omitempty"`
	TotalShortsDuration     *int64   `json:"totalShortsDuration,omitempty"`
	EstimatedShortsViews    *int64   `json:"estimatedShortsViews,omitempty"`
	EstimatedLongformViews  *int64   `json:"estimatedLongformViews,omitempty"`
	ShortsViewsPercentage   *float64 `json:"shortsViewsPercentage,omitempty"`
	LongformViewsPercentage *float64 `json:"longformViewsPercentage,omitempty"`
}

// maxAnalyzedUploads mirrors the classifier's analysis cap; longformCount
// is defined only over the analyzed range.
const maxAnalyzedUploads = 1000

// Derive computes the requested metrics from a statistics snapshot, the
// channel's publication time, and an optional upload classification. Each
// metric is emitted only when it is requested AND its inputs are present
// AND its divisors are positive; division by zero is never attempted.
func Derive(in Inputs, publishedAt *time.Time, cls *Classification, requested FieldSet, now time.Time) Derived {
	var out Derived

	var ageDays *int64
	if publishedAt != nil {
		d := int64(now.Sub(*publishedAt) / (24 * time.Hour))
		ageDays = &d
		if requested.Has(ChannelAgeInDays) {
			out.ChannelAgeInDays = &d
		}
	}

	sub, view, video := in.SubscriberCount, in.ViewCount, in.VideoCount

	if requested.Has(AverageViewsPerVideo) && view != nil && video != nil && *video > 0 {
		out.AverageViewsPerVideo = roundInt(float64(*view) / float64(*video))
	}
	if requested.Has(SubscribersPerVideo) && sub != nil && view != nil && *view > 0 {
		out.SubscribersPerVideo = roundFloat(float64(*sub)/float64(*view)*100, 4)
	}
	if requested.Has(ViewsPerSubscriber) && view != nil && sub != nil && *sub > 0 {
		out.ViewsPerSubscriber = roundFloat(float64(*view)/float64(*sub)*100, 2)
	}

	if ageDays != nil && *ageDays > 0 {
		age := float64(*ageDays)
		if requested.Has(UploadsPerWeek) && video != nil {
			out.UploadsPerWeek = roundFloat(float64(*video)/(age/7), 2)
		}
		if sub != nil {
			subsPerDay := float64(*sub) / age
			if requested.Has(SubsGainedPerDay) {
				out.SubsGainedPerDay = roundInt(subsPerDay)
			}
			if requested.Has(SubsGainedPerMonth) {
				out.SubsGainedPerMonth = roundInt(subsPerDay * 30.44)
			}
			if requested.Has(SubsGainedPerYear) {
				out.SubsGainedPerYear = roundInt(subsPerDay * 365.25)
			}
		}
		if requested.Has(ViewsGainedPerDay) && view != nil {
			out.ViewsGainedPerDay = roundInt(float64(*view) / age)
		}
		if requested.Has(ViralIndex) && sub != nil && view != nil && video != nil &&
			*view > 0 && *video > 0 {
			conversion := float64(*sub) / float64(*view)
			avgViews := float64(*view) / float64(*video)
			out.ViralIndex = roundInt(conversion*100 + avgViews/1_000_000)
		}
	}

	if cls != nil {
		shorts := int64(cls.ShortsCount)
		if requested.Has(ShortsCount) {
			out.ShortsCount = &shorts
		}
		if requested.Has(LongformCount) && video != nil {
			analyzed := *video
			if analyzed > maxAnalyzedUploads {
				analyzed = maxAnalyzedUploads
			}
			longform := analyzed - shorts
			out.LongformCount = &longform
		}
		if requested.Has(TotalShortsDuration) {
			dur := shorts * 60
			out.TotalShortsDuration = &dur
		}
		if requested.Has(EstimatedShortsViews) {
			sv := cls.ShortsViewTotal
			out.EstimatedShortsViews = &sv
		}
		if view != nil {
			longformViews := *view - cls.ShortsViewTotal
			if longformViews < 0 {
				longformViews = 0
			}
			if requested.Has(EstimatedLongformViews) {
				lv := longformViews
				out.EstimatedLongformViews = &lv
			}
			if *view > 0 {
				if requested.Has(ShortsViewsPercentage) {
					out.ShortsViewsPercentage = roundFloat(float64(cls.ShortsViewTotal)/float64(*view)*100, 2)
				}
				if requested.Has(LongformViewsPercentage) {
					out.LongformViewsPercentage = roundFloat(float64(longformViews)/float64(*view)*100, 2)
				}
			}
		}
	}

	return out
}

// roundInt rounds to the nearest integer.
func roundInt(v float64) *int64 {
	n := int64(math.Round(v))
	return &n
}

// roundFloat rounds to the given number of decimal places.
func roundFloat(v float64, places int) *float64 {
	scale := math.Pow(10, float64(places))
	r := math.Round(v*scale) / scale
	return &r
}
