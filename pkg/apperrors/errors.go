package apperrors

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrInvalidPeriod       = errors.New("invalid report period")
	ErrNoCompetitors       = errors.New("no competitors to discover")
	ErrNoApprovedFindings  = errors.New("no approved findings to report on")
	ErrDiscoveryInProgress = errors.New("discovery already in progress")
	ErrReportInProgress    = errors.New("report generation already in progress")
	ErrAgentFailed         = errors.New("agent call failed")
)
