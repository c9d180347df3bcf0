package news

import (
	"errors"
	"testing"
	"time"

	"depot-radar-go/internal/yahoo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type MockNewsProvider struct {
	mock.Mock
}

func (m *MockNewsProvider) GetRecentNews(symbol string, limit int) ([]yahoo.NewsItem, error) {
	args := m.Called(symbol, limit)
	return args.Get(0).([]yahoo.NewsItem), args.Error(1)
}

func TestClassify_NoNewsIsGreen(t *testing.T) {
	provider := new(MockNewsProvider)
	provider.On("GetRecentNews", "AAPL", 3).Return([]yahoo.NewsItem{}, nil)

	light := NewTrafficLight(provider, 3, zap.NewNop()).Classify("AAPL")

	assert.Equal(t, LightGreen, light)
	provider.AssertExpectations(t)
}

func TestClassify_AnyNewsIsRed(t *testing.T) {
	provider := new(MockNewsProvider)
	provider.On("GetRecentNews", "TSLA", 3).Return([]yahoo.NewsItem{
		{Title: "Quarterly results", Publisher: "Wire", PublishedAt: time.Now()},
	}, nil)

	light := NewTrafficLight(provider, 3, zap.NewNop()).Classify("TSLA")

	assert.Equal(t, LightRed, light)
}

func TestClassify_FetchErrorDegradesToGreen(t *testing.T) {
	provider := new(MockNewsProvider)
	provider.On("GetRecentNews", "NVDA", 3).Return([]yahoo.NewsItem(nil), errors.New("provider error"))

	light := NewTrafficLight(provider, 3, zap.NewNop()).Classify("NVDA")

	assert.Equal(t, LightGreen, light)
}
