package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64p(v int64) *int64 { return &v }

// A large music channel observed at a fixed reference time.
var (
	testInputs = Inputs{
		SubscriberCount: int64p(430_000_000),
		ViewCount:       int64p(94_080_649_435),
		VideoCount:      int64p(897),
	}
	testPublishedAt = time.Date(2012, 2, 20, 13, 42, 0, 0, time.UTC)
	testNow         = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
)

func TestDerive_GrowthMetrics(t *testing.T) {
	requested := NewFieldSet(
		AverageViewsPerVideo, SubscribersPerVideo, ViewsPerSubscriber,
		ChannelAgeInDays, UploadsPerWeek,
		SubsGainedPerDay, SubsGainedPerMonth, SubsGainedPerYear,
		ViewsGainedPerDay, ViralIndex,
	)

	out := Derive(testInputs, &testPublishedAt, nil, requested, testNow)

	require.NotNil(t, out.AverageViewsPerVideo)
	assert.Equal(t, int64(104_883_667), *out.AverageViewsPerVideo)

	require.NotNil(t, out.SubscribersPerVideo)
	assert.Equal(t, 0.4571, *out.SubscribersPerVideo)

	require.NotNil(t, out.ViewsPerSubscriber)
	assert.Equal(t, 21879.22, *out.ViewsPerSubscriber)

	require.NotNil(t, out.ChannelAgeInDays)
	assert.Equal(t, int64(5122), *out.ChannelAgeInDays)

	require.NotNil(t, out.UploadsPerWeek)
	assert.Equal(t, 1.23, *out.UploadsPerWeek)

	require.NotNil(t, out.SubsGainedPerDay)
	assert.Equal(t, int64(83_952), *out.SubsGainedPerDay)
	require.NotNil(t, out.SubsGainedPerMonth)
	assert.Equal(t, int64(2_555_486), *out.SubsGainedPerMonth)
	require.NotNil(t, out.SubsGainedPerYear)
	assert.Equal(t, int64(30_663_315), *out.SubsGainedPerYear)

	require.NotNil(t, out.ViewsGainedPerDay)
	assert.Equal(t, int64(18_367_952), *out.ViewsGainedPerDay)

	require.NotNil(t, out.ViralIndex)
	assert.Equal(t, int64(105), *out.ViralIndex)
}

func TestDerive_Idempotent(t *testing.T) {
	requested := NewFieldSet(All()...)
	cls := &Classification{ShortsCount: 120, TotalAnalyzed: 897, ShortsViewTotal: 3_000_000_000}

	first := Derive(testInputs, &testPublishedAt, cls, requested, testNow)
	second := Derive(testInputs, &testPublishedAt, cls, requested, testNow)

	assert.Equal(t, first, second)
}

func TestDerive_OnlyRequestedMetrics(t *testing.T) {
	requested := NewFieldSet(AverageViewsPerVideo)

	out := Derive(testInputs, &testPublishedAt, nil, requested, testNow)

	assert.NotNil(t, out.AverageViewsPerVideo)
	assert.Nil(t, out.SubscribersPerVideo)
	assert.Nil(t, out.ChannelAgeInDays)
	assert.Nil(t, out.SubsGainedPerDay)
	assert.Nil(t, out.ViralIndex)
}

func TestDerive_MissingInputsSuppressMetrics(t *testing.T) {
	requested := NewFieldSet(All()...)

	out := Derive(Inputs{}, nil, nil, requested, testNow)

	assert.Equal(t, Derived{}, out)
}

func TestDerive_ZeroDivisorsSuppressMetrics(t *testing.T) {
	requested := NewFieldSet(
		AverageViewsPerVideo, SubscribersPerVideo, ViewsPerSubscriber, ViralIndex,
	)
	in := Inputs{
		SubscriberCount: int64p(0),
		ViewCount:       int64p(0),
		VideoCount:      int64p(0),
	}

	out := Derive(in, &testPublishedAt, nil, requested, testNow)

	assert.Nil(t, out.AverageViewsPerVideo)
	assert.Nil(t, out.SubscribersPerVideo)
	assert.Nil(t, out.ViewsPerSubscriber)
	assert.Nil(t, out.ViralIndex)
}

func TestDerive_BrandNewChannel(t *testing.T) {
	// Published within the last day, so the age-gated rates are absent.
	requested := NewFieldSet(
		ChannelAgeInDays, UploadsPerWeek, SubsGainedPerDay, ViewsGainedPerDay, ViralIndex,
	)
	pub := testNow.Add(-6 * time.Hour)

	out := Derive(testInputs, &pub, nil, requested, testNow)

	require.NotNil(t, out.ChannelAgeInDays)
	assert.Equal(t, int64(0), *out.ChannelAgeInDays)
	assert.Nil(t, out.UploadsPerWeek)
	assert.Nil(t, out.SubsGainedPerDay)
	assert.Nil(t, out.ViewsGainedPerDay)
	assert.Nil(t, out.ViralIndex)
}

func TestDerive_ContentMetrics(t *testing.T) {
	requested := NewFieldSet(
		ShortsCount, LongformCount, TotalShortsDuration,
		EstimatedShortsViews, EstimatedLongformViews,
		ShortsViewsPercentage, LongformViewsPercentage,
	)
	in := Inputs{
		ViewCount:  int64p(10_000_000),
		VideoCount: int64p(400),
	}
	cls := &Classification{ShortsCount: 150, TotalAnalyzed: 400, ShortsViewTotal: 2_500_000}

	out := Derive(in, nil, cls, requested, testNow)

	require.NotNil(t, out.ShortsCount)
	require.NotNil(t, out.LongformCount)
	assert.Equal(t, int64(150), *out.ShortsCount)
	assert.Equal(t, int64(250), *out.LongformCount)
	assert.Equal(t, *out.ShortsCount+*out.LongformCount, int64(cls.TotalAnalyzed))

	require.NotNil(t, out.TotalShortsDuration)
	assert.Equal(t, int64(150*60), *out.TotalShortsDuration)

	require.NotNil(t, out.EstimatedShortsViews)
	require.NotNil(t, out.EstimatedLongformViews)
	assert.Equal(t, int64(2_500_000), *out.EstimatedShortsViews)
	assert.Equal(t, int64(7_500_000), *out.EstimatedLongformViews)
	assert.Equal(t, *in.ViewCount, *out.EstimatedShortsViews+*out.EstimatedLongformViews)

	require.NotNil(t, out.ShortsViewsPercentage)
	require.NotNil(t, out.LongformViewsPercentage)
	assert.Equal(t, 25.0, *out.ShortsViewsPercentage)
	assert.Equal(t, 75.0, *out.LongformViewsPercentage)
}

func TestDerive_LongformCountCappedAtAnalyzedRange(t *testing.T) {
	requested := NewFieldSet(LongformCount)
	in := Inputs{VideoCount: int64p(5000)}
	cls := &Classification{ShortsCount: 300, TotalAnalyzed: 1000}

	out := Derive(in, nil, cls, requested, testNow)

	require.NotNil(t, out.LongformCount)
	assert.Equal(t, int64(700), *out.LongformCount)
}

func TestDerive_ShortsViewsExceedTotalClampsToZero(t *testing.T) {
	// Estimated shorts views can overshoot the channel total; longform
	// views never go negative.
	requested := NewFieldSet(EstimatedLongformViews, LongformViewsPercentage)
	in := Inputs{ViewCount: int64p(1_000_000)}
	cls := &Classification{ShortsCount: 50, TotalAnalyzed: 50, ShortsViewTotal: 1_500_000}

	out := Derive(in, nil, cls, requested, testNow)

	require.NotNil(t, out.EstimatedLongformViews)
	assert.Equal(t, int64(0), *out.EstimatedLongformViews)
	require.NotNil(t, out.LongformViewsPercentage)
	assert.Equal(t, 0.0, *out.LongformViewsPercentage)
}

func TestDerive_ClassificationAbsent(t *testing.T) {
	requested := NewFieldSet(All()...)

	out := Derive(testInputs, &testPublishedAt, nil, requested, testNow)

	assert.Nil(t, out.ShortsCount)
	assert.Nil(t, out.LongformCount)
	assert.Nil(t, out.TotalShortsDuration)
	assert.Nil(t, out.EstimatedShortsViews)
	assert.Nil(t, out.EstimatedLongformViews)
	assert.Nil(t, out.ShortsViewsPercentage)
	assert.Nil(t, out.LongformViewsPercentage)
	// Growth metrics are unaffected by the missing classification.
	assert.NotNil(t, out.AverageViewsPerVideo)
}

func TestRequiredFields(t *testing.T) {
	fields := RequiredFields(NewFieldSet(AverageViewsPerVideo))
	assert.ElementsMatch(t, []string{"viewCount", "videoCount"}, fields)

	fields = RequiredFields(NewFieldSet(SubsGainedPerDay, ViewsGainedPerDay))
	assert.ElementsMatch(t, []string{"subscriberCount", "viewCount", "publishedAt"}, fields)

	assert.Empty(t, RequiredFields(NewFieldSet()))
}

func TestNeedsClassification(t *testing.T) {
	assert.False(t, NeedsClassification(NewFieldSet(AverageViewsPerVideo, ViralIndex)))
	assert.True(t, NeedsClassification(NewFieldSet(ShortsCount)))
	assert.True(t, NeedsClassification(NewFieldSet(AverageViewsPerVideo, ShortsViewsPercentage)))
}

func TestIsMetric(t *testing.T) {
	assert.True(t, IsMetric(AverageViewsPerVideo))
	assert.True(t, IsMetric(LongformViewsPercentage))
	assert.False(t, IsMetric("subscriberCount"))
	assert.False(t, IsMetric("bogus"))
}
