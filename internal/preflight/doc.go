// Package preflight provides readiness checks for the tools, directories, and
// archive credentials meetscribe depends on.
//
// The CLI "meetscribe preflight" command runs RunAll and exits non-zero when
// any check fails, so a misconfigured host is caught before a long download.
package preflight
