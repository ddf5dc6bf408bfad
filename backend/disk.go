package backend

import (
	"os"
	"path/filepath"

	"github.com/samokhinv/connectome-go/locker"
	"github.com/samokhinv/connectome-go/serializer"
	"github.com/samokhinv/connectome-go/txn"
)

// Disk is a content-addressed local filesystem blob store: keys (hash hex
// digests) are sharded two levels deep by their leading hex characters, so
// no single directory accumulates an unbounded number of entries — the
// same sharding idea the in-memory cache package applies to its shard map,
// expressed at the filesystem level instead.
//
// Get/Set go through a txn.Manager, same as Ram: beyond the temp-file-then-
// rename trick already making a single Set atomic, the reservation also
// stops two concurrent Sets for the same key from racing on the same
// ".tmp" path.
//
// There is no pack dependency for "content-addressed local blob storage";
// os/path/filepath is used directly (see DESIGN.md, "Standard-library-only
// parts").
type Disk struct {
	dir  string
	ser  serializer.Serializer
	txns *txn.Manager
}

// NewDisk roots a Disk store at dir, creating it if necessary. Values are
// encoded with ser. An optional Locker coordinates Get/Set transactions
// across this Disk's key space; omit it to get a private in-process
// locker.
func NewDisk(dir string, ser serializer.Serializer, lockers ...locker.Locker) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &BackendError{Backend: "disk", Key: dir, Cause: err}
	}
	return &Disk{dir: dir, ser: ser, txns: txn.New(pickLocker(lockers))}, nil
}

func (d *Disk) path(key string) string {
	if len(key) < 4 {
		return filepath.Join(d.dir, key)
	}
	return filepath.Join(d.dir, key[:2], key[2:4], key)
}

func (d *Disk) Contains(key string) bool {
	_, err := os.Stat(d.path(key))
	return err == nil
}

func (d *Disk) Get(key string) (any, bool, error) {
	isRead, token, err := d.txns.Reserve(key, func() bool { return d.Contains(key) })
	if err != nil {
		return nil, false, err
	}
	if !isRead {
		d.txns.Fail(key, token)
		return nil, false, nil
	}

	type result struct {
		v   any
		ok  bool
		err error
	}
	res := txn.ReleaseRead(d.txns, key, token, func(k string) result {
		data, err := os.ReadFile(d.path(k))
		if os.IsNotExist(err) {
			return result{nil, false, nil}
		}
		if err != nil {
			return result{nil, false, &BackendError{Backend: "disk", Key: k, Cause: err}}
		}
		var out any
		if err := d.ser.Decode(data, &out); err != nil {
			return result{nil, false, &BackendError{Backend: "disk", Key: k, Cause: err}}
		}
		return result{out, true, nil}
	})
	return res.v, res.ok, res.err
}

// Set reserves the exclusive write slot for key, then writes value via a
// temp-file-then-rename so a concurrent Get never observes a partially
// written blob.
func (d *Disk) Set(key string, value any) error {
	_, token, err := d.txns.Reserve(key, func() bool { return false })
	if err != nil {
		return err
	}
	var writeErr error
	txn.ReleaseWrite(d.txns, key, value, token, func(k string, v any) {
		writeErr = d.writeFile(k, v)
	})
	return writeErr
}

func (d *Disk) writeFile(key string, value any) error {
	path := d.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &BackendError{Backend: "disk", Key: key, Cause: err}
	}
	data, err := d.ser.Encode(value)
	if err != nil {
		return &BackendError{Backend: "disk", Key: key, Cause: err}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &BackendError{Backend: "disk", Key: key, Cause: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		return &BackendError{Backend: "disk", Key: key, Cause: err}
	}
	return nil
}
