// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package translate

import (
	"github.com/onosproject/unitopo-adapter/pkg/path"
	"github.com/onosproject/unitopo-adapter/pkg/tree"
)

// Writer translates changes of one node. The data passed excludes child subtrees
// that have writers of their own.
type Writer interface {
	Write(wc *WriteContext, id path.IID, data tree.Node) error
	Update(wc *WriteContext, id path.IID, before tree.Node, after tree.Node) error
	Delete(wc *WriteContext, id path.IID, data tree.Node) error
}

// WriteDeleter is a writer without an update of its own.
type WriteDeleter interface {
	Write(wc *WriteContext, id path.IID, data tree.Node) error
	Delete(wc *WriteContext, id path.IID, data tree.Node) error
}

// ReplaceOnUpdate turns a WriteDeleter into a Writer whose update deletes the old
// data and writes the new.
func ReplaceOnUpdate(w WriteDeleter) Writer {
	return replaceOnUpdate{w}
}

type replaceOnUpdate struct {
	WriteDeleter
}

func (r replaceOnUpdate) Update(wc *WriteContext, id path.IID, before tree.Node, after tree.Node) error {
	if err := r.Delete(wc, id, before); err != nil {
		return err
	}
	return r.Write(wc, id, after)
}

// NoopWriter accepts every change without touching the device. It is used for nodes
// whose presence alone carries no device configuration.
type NoopWriter struct{}

// Write implements Writer.
func (NoopWriter) Write(wc *WriteContext, id path.IID, data tree.Node) error {
	return nil
}

// Update implements Writer.
func (NoopWriter) Update(wc *WriteContext, id path.IID, before tree.Node, after tree.Node) error {
	return nil
}

// Delete implements Writer.
func (NoopWriter) Delete(wc *WriteContext, id path.IID, data tree.Node) error {
	return nil
}

// compositeWriter runs several writers registered at one node. Each one ignores the
// instances it does not handle.
type compositeWriter []Writer

func (c compositeWriter) Write(wc *WriteContext, id path.IID, data tree.Node) error {
	for _, w := range c {
		if err := w.Write(wc, id, data); err != nil {
			return err
		}
	}
	return nil
}

func (c compositeWriter) Update(wc *WriteContext, id path.IID, before tree.Node, after tree.Node) error {
	for _, w := range c {
		if err := w.Update(wc, id, before, after); err != nil {
			return err
		}
	}
	return nil
}

func (c compositeWriter) Delete(wc *WriteContext, id path.IID, data tree.Node) error {
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i].Delete(wc, id, data); err != nil {
			return err
		}
	}
	return nil
}
