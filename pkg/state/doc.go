// Package state holds the resolution store: the single place where the
// outcome of configuration loads is kept and observed.
//
// The store applies transition records produced by a confres.Coordinator:
//
//	Idle|Resolved|Failed --LoadStarted--> Loading
//	Loading --LoadSucceeded--> Resolved
//	Loading --LoadFailed--> Failed (previous resolution kept)
//
// Every record carries the epoch of the load that produced it. A LoadStarted
// from an older epoch, or a completion whose epoch is not the one currently
// loading, is discarded, so a slow superseded load can never overwrite the
// result of a newer one.
//
// Records with epoch zero are untagged: LoadStarted always applies and keeps
// the current epoch, and an untagged completion applies to whichever load is
// in progress.
package state
