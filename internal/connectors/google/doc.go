// Package google pushes calendar mutations to Google Calendar through the
// typed v3 API client, and refreshes OAuth tokens against Google's token
// endpoint.
package google
