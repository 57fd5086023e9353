// Package session owns the decoded session state of the dashboard.
//
// State moves between three phases:
//
//	Uninitialized (IsLoading)  --Refresh, no token-->     LoggedOut
//	Uninitialized              --Refresh, valid token-->  LoggedIn(role)
//	LoggedIn                   --Refresh, bad token-->    LoggedOut (token purged)
//	LoggedIn                   --Logout-->                LoggedOut
//
// Any phase re-runs Refresh when the token store reports a change made from
// another context. All transitions are serialized by the Service.
package session
