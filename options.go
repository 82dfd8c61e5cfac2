package storagemock

import "github.com/hupe1980/storagemock/sidecar"

type options struct {
	logger     *Logger
	decompress bool
}

// Option configures an activation.
type Option func(*options)

// WithLogger sets the structured logger used by the activation and the
// clients it produces. The default discards all output.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithoutDecompression disables transparent gunzip of objects whose
// sidecar declares content_encoding "gzip". Downloads then return the
// stored bytes verbatim.
func WithoutDecompression() Option {
	return func(o *options) {
		o.decompress = false
	}
}

// UploadConfig is the resolved form of a set of UploadOptions. Facade
// implementations (the mocked variant here, the live variants under
// remote/) fold options into it via ApplyUploadOptions.
type UploadConfig struct {
	// Metadata, when non-nil, is persisted with the object. When nil
	// the upload writes content only.
	Metadata *Metadata

	// Gzip compresses the content and records content_encoding "gzip"
	// in the persisted metadata.
	Gzip bool
}

// UploadOption configures a single upload.
type UploadOption func(*UploadConfig)

// ApplyUploadOptions folds opts, in order, into an UploadConfig.
func ApplyUploadOptions(opts []UploadOption) UploadConfig {
	var cfg UploadConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithMetadata persists md as the object's metadata alongside the
// uploaded content, replacing fields set by earlier options.
func WithMetadata(md Metadata) UploadOption {
	return func(o *UploadConfig) {
		o.Metadata = &md
	}
}

// WithContentType sets content_type on the persisted metadata.
// Shorthand for WithMetadata when content_type is the only field.
// Options apply in order.
func WithContentType(contentType string) UploadOption {
	return func(o *UploadConfig) {
		if o.Metadata == nil {
			o.Metadata = &Metadata{}
		}
		o.Metadata.ContentType = sidecar.String(contentType)
	}
}

// WithGzip compresses the uploaded content and records
// content_encoding "gzip" in the persisted metadata, so a later
// download decompresses it transparently.
func WithGzip() UploadOption {
	return func(o *UploadConfig) {
		o.Gzip = true
	}
}
