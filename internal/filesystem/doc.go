/*
Package filesystem provides resilient filesystem operations with automatic retry logic
for NFS stale file handle errors.

Photo libraries frequently live on network shares. Reading EXIF blocks and
stat'ing files for modification times can hit ESTALE (errno 116) when the
server side changes under a mounted share. StatWithRetry and OpenWithRetry
retry those errors with exponential backoff; every other error is returned
immediately.

	info, err := filesystem.StatWithRetry(ctx, "/nfs/photos/img.jpg", filesystem.DefaultRetryConfig())

	f, err := filesystem.OpenWithRetry(ctx, path, filesystem.DefaultRetryConfig())
	if err != nil {
	    return err
	}
	defer f.Close()

# Retry Behavior

Defaults: MaxRetries 3, InitialBackoff 50ms, MaxBackoff 500ms. A cancelled
context aborts the backoff wait and the returned error wraps both the last
ESTALE error and ctx.Err().
*/
package filesystem
