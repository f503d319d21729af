package loadtest

import "github.com/myzhan/boomer"

// Recorder receives the success/failure classification of one task run.
type Recorder interface {
	RecordSuccess(requestType, name string, responseTime, responseLength int64)
	RecordFailure(requestType, name string, responseTime int64, exception string)
}

// boomerRecorder reports results to the locust master through the boomer
// runtime.
type boomerRecorder struct{}

func (boomerRecorder) RecordSuccess(requestType, name string, responseTime, responseLength int64) {
	boomer.RecordSuccess(requestType, name, responseTime, responseLength)
}

func (boomerRecorder) RecordFailure(requestType, name string, responseTime int64, exception string) {
	boomer.RecordFailure(requestType, name, responseTime, exception)
}
