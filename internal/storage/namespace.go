// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"context"

	"github.com/taibuivan/flavorfi/pkg/slice"
)

// namespaced prefixes every key before delegating to the parent store.
type namespaced struct {
	parent Store
	prefix string
	owns   bool
}

// Namespace returns a view of parent in which every key is prefixed.
//
// Closing the view is a no-op; the owner of parent closes it.
func Namespace(parent Store, prefix string) Store {
	return &namespaced{parent: parent, prefix: prefix}
}

func (n *namespaced) Get(ctx context.Context, key string) (string, error) {
	return n.parent.Get(ctx, n.prefix+key)
}

func (n *namespaced) Apply(ctx context.Context, mutations ...Mutation) error {
	prefixed := slice.Map(mutations, func(m Mutation) Mutation {
		m.Key = n.prefix + m.Key
		return m
	})
	return n.parent.Apply(ctx, prefixed...)
}

func (n *namespaced) Close() error {
	if n.owns {
		return n.parent.Close()
	}
	return nil
}
