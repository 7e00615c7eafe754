package render

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
)

func weekOfDays() []ActivityDay {
	return []ActivityDay{
		{Label: "23.08", Wins: 2, Losses: 1},
		{Label: "24.08"},
		{Label: "25.08", Wins: 0, Losses: 3},
		{Label: "26.08", Wins: 4, Losses: 2},
		{Label: "27.08"},
		{Label: "28.08", Wins: 1, Losses: 0},
		{Label: "29.08", Wins: 2, Losses: 2},
	}
}

func TestActivityChartProducesPNG(t *testing.T) {
	data, err := ActivityChart("Активность за 7 дней", weekOfDays())
	assert.NoError(t, err)
	assert.NotEmpty(t, data)

	img, err := png.Decode(bytes.NewReader(data))
	assert.NoError(t, err)
	assert.Equal(t, chartWidth, img.Bounds().Dx())
	assert.Equal(t, chartHeight, img.Bounds().Dy())
}

func TestActivityChartEmptyWeek(t *testing.T) {
	days := []ActivityDay{
		{Label: "23.08"}, {Label: "24.08"}, {Label: "25.08"},
		{Label: "26.08"}, {Label: "27.08"}, {Label: "28.08"}, {Label: "29.08"},
	}

	data, err := ActivityChart("Активность за 7 дней", days)
	assert.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestActivityChartRejectsNoDays(t *testing.T) {
	_, err := ActivityChart("x", nil)
	assert.Error(t, err)
}

func TestActivityChartDependsOnData(t *testing.T) {
	a, err := ActivityChart("A", weekOfDays())
	assert.NoError(t, err)

	other := weekOfDays()
	other[3].Wins = 9
	b, err := ActivityChart("A", other)
	assert.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestRatingTrendProducesPNG(t *testing.T) {
	points := []int{3000, 3030, 3000, 2970, 3000, 3030, 3060}

	data, err := RatingTrend("Динамика MMR", points)
	assert.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	assert.NoError(t, err)
	assert.Equal(t, chartWidth, img.Bounds().Dx())
}

func TestRatingTrendFlatWalk(t *testing.T) {
	// Alternating wins and losses cancel out; the padded range keeps the
	// line renderable.
	points := []int{2500, 2530, 2500, 2530, 2500}

	data, err := RatingTrend("Динамика MMR", points)
	assert.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestRatingTrendNeedsTwoPoints(t *testing.T) {
	_, err := RatingTrend("x", []int{3000})
	assert.Error(t, err)
}

func TestGridSteps(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3, 4}, gridSteps(4))
	assert.Equal(t, []int{2, 4, 6, 8, 10}, gridSteps(10))
	assert.Equal(t, []int{5, 10, 15, 20}, gridSteps(20))
}
