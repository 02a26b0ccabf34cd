// Package reconcile mirrors a remote catalog listing into a destination.
//
// Reconciliation runs in two phases. Plan compares each remote record with
// the destination and the metadata cache and produces an Action per path:
//
//   - deleted on the server: DeleteLocal if a local copy exists, otherwise Skip
//   - no local copy: Download
//   - otherwise Download when the size differs or the known copy is older
//     than the remote, else Skip
//
// The cached state, when present, takes the place of the local one in the
// comparison. Apply then executes the actions with a bounded number of
// workers. Failures are per path: each is reported as a *TransferError and
// the batch carries on.
//
// Downloads are written to a temporary file and renamed into place, so an
// interrupted transfer never leaves a partial copy under the real name.
//
// # Usage
//
//	dest := reconcile.NewLocalDestination(afero.NewOsFs(), "/srv/mirror")
//	engine := reconcile.NewEngine(cli, dest, cache, logger, reconcile.Options{Workers: 4})
//	plan, report, err := engine.Sync(ctx, "docs/")
//	for _, failure := range reconcile.Errors(err) {
//	    ...
//	}
package reconcile
