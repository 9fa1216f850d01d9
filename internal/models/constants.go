package models

import "errors"

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

const (
	DefaultCuisine  = "Any"
	DefaultDietary  = "None"
	DefaultOccasion = "General"
	DefaultCourses  = "3"
)

const (
	// DefaultSessionTTL время жизни состояния страницы в Redis
	DefaultSessionTTL = 24 * 60 * 60 // 24 часа в секундах

	// InflightTTL upper bound for a stuck AI request flag
	InflightTTL = 120 // секунд

	// WorkerQueueSize размер очереди воркера
	WorkerQueueSize = 128
)

var (
	ErrValidation = errors.New("validation failed")
	ErrBusy       = errors.New("a request is already in progress")
)
