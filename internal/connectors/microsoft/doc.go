// Package microsoft pushes calendar mutations to Microsoft 365 calendars via
// the Microsoft Graph v1.0 REST API, and refreshes OAuth tokens against the
// Microsoft identity platform.
package microsoft
