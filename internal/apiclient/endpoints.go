package apiclient

import (
	"net/url"
	"strings"
)

// Backend endpoint paths, relative to the base URL.
const (
	EndpointLogin         = "/auth/login/"
	EndpointRegister      = "/auth/register/"
	EndpointLogout        = "/auth/logout/"
	EndpointRefresh       = "/auth/refresh/"
	EndpointProfile       = "/auth/profile/"
	EndpointTasks         = "/tasks/"
	EndpointStats         = "/stats/"
	EndpointDailyProgress = "/stats/daily-progress/"
)

// TaskDetail returns the path for one task.
func TaskDetail(id string) string {
	return EndpointTasks + url.PathEscape(id) + "/"
}

// endpointLabel collapses per-id paths so metric label cardinality stays bounded.
func endpointLabel(path string) string {
	if strings.HasPrefix(path, EndpointTasks) && path != EndpointTasks {
		return EndpointTasks + "{id}/"
	}
	return path
}
