package storagemock

import (
	"context"
	"errors"
	"sync"

	"github.com/hupe1980/storagemock/blobio"
	"github.com/hupe1980/storagemock/mounttable"
)

// Mount binds a bucket name to a local directory root with explicit
// read/write permissions. Both flags default to false; a
// zero-permission mount resolves but denies every operation.
type Mount = mounttable.Mount

// Factory produces the Client handed out by NewClient.
type Factory func(ctx context.Context) (Client, error)

// ErrNoFactory is returned by NewClient when nothing is installed:
// no activation is open and SetFactory was never called.
var ErrNoFactory = errors.New("no client factory installed (call Activate or SetFactory)")

// defaultFactory is the process-wide interception point. Activations
// and SetFactory swap it; NewClient reads it. Access is unsynchronized
// on purpose: the library targets single-threaded test execution, and
// parallel test processes must use separate activations.
var defaultFactory Factory = func(context.Context) (Client, error) {
	return nil, ErrNoFactory
}

// SetFactory installs f as the process default and returns a function
// restoring the previous default. Live variants use this to register
// themselves outside any activation:
//
//	restore := storagemock.SetFactory(s3.Factory(client))
//	defer restore()
func SetFactory(f Factory) (restore func()) {
	prev := defaultFactory
	defaultFactory = f
	return func() {
		defaultFactory = prev
	}
}

// NewClient returns a client from the installed factory: the mocked
// client while an activation is open, whatever SetFactory installed
// otherwise.
func NewClient(ctx context.Context) (Client, error) {
	return defaultFactory(ctx)
}

// Activation is the handle for one scoped mount-set activation. It
// owns the mount table and the factory swap; Close releases both.
type Activation struct {
	client  *mockClient
	table   *mounttable.Table
	logger  *Logger
	restore func()
	once    sync.Once
}

// Activate validates mounts, builds the mocked client over them, and
// installs it as the process default factory.
//
// It fails with ErrInvalidMount if a bucket name repeats or a local
// root is not an existing directory. An empty mount set is valid; no
// bucket is accessible then.
//
// Activations stack: each Close restores the factory that was
// installed when its activation began. The caller must close the
// returned Activation on every exit path; prefer With, which does so
// structurally.
func Activate(mounts []Mount, opts ...Option) (*Activation, error) {
	o := options{
		logger:     NoopLogger(),
		decompress: true,
	}
	for _, opt := range opts {
		opt(&o)
	}

	table, err := mounttable.New(mounts)
	if err != nil {
		return nil, translateError(err)
	}

	engineOpts := []blobio.Option{blobio.WithLogger(o.logger.Logger)}
	if !o.decompress {
		engineOpts = append(engineOpts, blobio.WithoutDecompression())
	}

	client := &mockClient{
		engine: blobio.NewEngine(table, engineOpts...),
	}

	a := &Activation{
		client: client,
		table:  table,
		logger: o.logger,
		restore: SetFactory(func(context.Context) (Client, error) {
			return client, nil
		}),
	}

	o.logger.LogActivation(context.Background(), table.Len())
	return a, nil
}

// Client returns the activation's mocked client directly, without
// going through the process default factory.
func (a *Activation) Client() Client {
	return a.client
}

// Close restores the previously installed factory and tears down the
// mount table, so stale handles resolve nothing. Idempotent.
func (a *Activation) Close() error {
	a.once.Do(func() {
		a.restore()
		a.table.Close()
		a.logger.LogDeactivation(context.Background())
	})
	return nil
}

// With activates mounts for the duration of fn and guarantees
// deactivation on all exit paths, including panics.
func With(mounts []Mount, fn func(Client) error, opts ...Option) error {
	a, err := Activate(mounts, opts...)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(a.Client())
}
