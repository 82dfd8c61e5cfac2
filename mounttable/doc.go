// Package mounttable maps bucket names to local directories.
//
// A Mount binds one bucket name to one existing directory together with
// read/write permission flags. A Table validates a set of mounts once at
// activation time and resolves bucket names read-only afterwards.
//
// Permission checks are a pure function of the Mount: a mount with
// neither flag set is legal but permits no operations.
package mounttable
