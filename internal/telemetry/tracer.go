package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for reconciliation spans.
const (
	AttrClientIP  = "client.ip"
	AttrRoute     = "http.route"
	AttrSource    = "recon.source"
	AttrDomain    = "recon.domain"
	AttrFilename  = "recon.filename"
	AttrFormat    = "recon.format"
	AttrRows      = "recon.rows"
	AttrSkipped   = "recon.skipped"
	AttrKey       = "recon.identity_key"
	AttrFindings  = "recon.findings"
	AttrLDAPHost  = "ldap.server"
	AttrLDAPBind  = "ldap.bind"
	AttrBucket    = "storage.bucket"
	AttrObjectKey = "storage.key"
	AttrRegion    = "storage.region"
)

// Span names. Format: <component>.<operation>.
const (
	SpanConsolidate  = "recon.consolidate"
	SpanIdentityList = "recon.identity.list"
	SpanIdentityCard = "recon.identity.card"
	SpanAudit        = "recon.audit"
	SpanIngestParse  = "ingest.parse"
	SpanDirSync      = "dirsync.sync"
	SpanExportS3     = "export.s3"
)

// ClientIP returns an attribute for the client IP address.
func ClientIP(ip string) attribute.KeyValue {
	return attribute.String(AttrClientIP, ip)
}

// Route returns an attribute for the matched HTTP route pattern.
func Route(pattern string) attribute.KeyValue {
	return attribute.String(AttrRoute, pattern)
}

// Source returns an attribute for a record source (directory, mfa, hr).
func Source(source string) attribute.KeyValue {
	return attribute.String(AttrSource, source)
}

// Domain returns an attribute for a directory domain source.
func Domain(domain string) attribute.KeyValue {
	return attribute.String(AttrDomain, domain)
}

// Filename returns an attribute for an uploaded or exported file name.
func Filename(name string) attribute.KeyValue {
	return attribute.String(AttrFilename, name)
}

// Format returns an attribute for a file format.
func Format(format string) attribute.KeyValue {
	return attribute.String(AttrFormat, format)
}

// Rows returns an attribute for a row count.
func Rows(n int) attribute.KeyValue {
	return attribute.Int(AttrRows, n)
}

// Skipped returns an attribute for a skipped row count.
func Skipped(n int) attribute.KeyValue {
	return attribute.Int(AttrSkipped, n)
}

// IdentityKey returns an attribute for an identity key.
func IdentityKey(key string) attribute.KeyValue {
	return attribute.String(AttrKey, key)
}

// Findings returns an attribute for the number of audit issues.
func Findings(n int) attribute.KeyValue {
	return attribute.Int(AttrFindings, n)
}

// LDAPServer returns an attribute for an LDAP server address.
func LDAPServer(addr string) attribute.KeyValue {
	return attribute.String(AttrLDAPHost, addr)
}

// LDAPBind returns an attribute for the LDAP bind method (simple, gssapi).
func LDAPBind(method string) attribute.KeyValue {
	return attribute.String(AttrLDAPBind, method)
}

// Bucket returns an attribute for an S3 bucket name.
func Bucket(name string) attribute.KeyValue {
	return attribute.String(AttrBucket, name)
}

// StorageKey returns an attribute for an S3 object key.
func StorageKey(key string) attribute.KeyValue {
	return attribute.String(AttrObjectKey, key)
}

// Region returns an attribute for a cloud region.
func Region(region string) attribute.KeyValue {
	return attribute.String(AttrRegion, region)
}

// StartReconSpan starts an internal span for a reconciliation operation.
func StartReconSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// StartClientSpan starts a span for a call to an external system such as an
// LDAP server or object store.
func StartClientSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
