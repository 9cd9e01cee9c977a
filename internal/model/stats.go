package model

import "time"

// QueueSnapshot is the aggregate view of the queue shown in the header
type QueueSnapshot struct {
	Active          int
	Limit           int
	Pending         int
	OverallProgress float64 // 0 to 100
	OverallSpeed    float64 // bytes per second
}

// TransferStatistics summarizes the registry since the last reset
type TransferStatistics struct {
	TotalFiles       int
	CompletedFiles   int
	FailedFiles      int
	TotalBytes       int64
	TransferredBytes int64
	AverageSpeed     float64 // bytes per second
	Elapsed          time.Duration
}
