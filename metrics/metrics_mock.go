package metrics

import (
	"time"

	"github.com/bidconnect/exchange-connector/openrtb_ext"
	"github.com/stretchr/testify/mock"
)

// MetricsEngineMock is mock for the MetricsEngine interface
type MetricsEngineMock struct {
	mock.Mock
}

// RecordConnectionAccept mock
func (me *MetricsEngineMock) RecordConnectionAccept(success bool) {
	me.Called(success)
}

// RecordConnectionClose mock
func (me *MetricsEngineMock) RecordConnectionClose(success bool) {
	me.Called(success)
}

// RecordRequest mock
func (me *MetricsEngineMock) RecordRequest(labels Labels) {
	me.Called(labels)
}

// RecordRequestTime mock
func (me *MetricsEngineMock) RecordRequestTime(labels Labels, length time.Duration) {
	me.Called(labels, length)
}

// RecordBids mock
func (me *MetricsEngineMock) RecordBids(exchange openrtb_ext.ExchangeName, seats int, bids int) {
	me.Called(exchange, seats, bids)
}

// RecordCompatibility mock
func (me *MetricsEngineMock) RecordCompatibility(exchange openrtb_ext.ExchangeName, kind ConfigKind, compatible bool) {
	me.Called(exchange, kind, compatible)
}

// RecordWinNotice mock
func (me *MetricsEngineMock) RecordWinNotice(exchange openrtb_ext.ExchangeName, status WinNoticeStatus, price float64) {
	me.Called(exchange, status, price)
}
