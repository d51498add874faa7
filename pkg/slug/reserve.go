// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slug

import (
	"context"
	"fmt"
)

// Locker serializes claims on the same base slug across processes.
type Locker interface {
	Acquire(context context.Context, key string) (release func(), err error)
}

/*
Reserve picks a unique slug for name and runs persist with it while holding
the lock "<scope>:<base>".

The lock only narrows the race between probing and inserting; the storage
unique constraint still decides. A nil locker runs without locking.

Parameters:
  - context: context.Context
  - locker: Locker (may be nil)
  - scope: string (namespace, e.g. "taxonomy" or "tag:Company")
  - name: string (display name)
  - exists: ExistsFunc
  - persist: func(slug string) error (insert or update using the slug)

Returns:
  - error: ErrEmpty, ErrExhausted, lock failures or persist's error
*/
func Reserve(context context.Context, locker Locker, scope, name string, exists ExistsFunc, persist func(slug string) error) error {
	base := From(name)
	if base == "" {
		return ErrEmpty
	}

	if locker != nil {
		release, err := locker.Acquire(context, scope+":"+base)
		if err != nil {
			return fmt.Errorf("slug: lock %s:%s: %w", scope, base, err)
		}
		defer release()
	}

	candidate, err := Unique(context, name, exists)
	if err != nil {
		return err
	}
	return persist(candidate)
}
