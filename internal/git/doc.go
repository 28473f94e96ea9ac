// Package git wraps the git operations scrub needs to rewrite history.
//
// Mutating operations (filter-branch, commit, update-ref, reflog, gc, push)
// shell out to the git executable through a CommandExecutor so that git's own
// semantics apply and tests can substitute a recording executor. Read-only
// inspection of history (which commits still contain a path, which remotes
// exist, the current user identity) uses go-git so it does not depend on
// parsing porcelain output.
//
// # Client
//
//	client := git.NewClient(repoRoot)
//	if err := client.RemovePathFromHistory(ctx, ".env"); err != nil {
//	    return err
//	}
//
// Every failed invocation is returned as an *errors.GitError carrying the
// subcommand, arguments and captured stderr.
//
// # History
//
//	history, err := git.OpenHistory(repoRoot)
//	commits, err := history.CommitsContaining(".env")
package git
