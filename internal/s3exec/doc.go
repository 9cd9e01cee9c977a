// Package s3exec moves bytes between the local disk and S3 for the transfer
// queue. It implements transfer.Executor and transfer.IdentityProber on top
// of the AWS SDK.
package s3exec
