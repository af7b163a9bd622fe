// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package def

// Kind names a record type and the root key its data files use. A Kind
// loads its records without the caller knowing the concrete type.
type Kind struct {
	Name string

	loadDir  func(db *Database, dir string) error
	loadData func(db *Database, data []byte, path string) error
}

// KindOf returns the Kind for records of type T stored under the root key
// name. By convention name is also the directory the records live in.
func KindOf[T any, PT Pointer[T]](name string) Kind {
	return Kind{
		Name: name,
		loadDir: func(db *Database, dir string) error {
			return LoadDirectory[T, PT](db, dir, name)
		},
		loadData: func(db *Database, data []byte, path string) error {
			return LoadData[T, PT](db, data, path, name)
		},
	}
}

// LoadDirectory loads every data file of this kind under dir.
func (k Kind) LoadDirectory(db *Database, dir string) error {
	return k.loadDir(db, dir)
}

// LoadData loads records of this kind from bytes already in memory.
func (k Kind) LoadData(db *Database, data []byte, path string) error {
	return k.loadData(db, data, path)
}

func (k Kind) String() string {
	return k.Name
}
