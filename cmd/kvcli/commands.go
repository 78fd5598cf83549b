// Package kvcli implements the bufkv CLI's key-value subcommands: get, set,
// rm, sub-get, sub-set and flush, all operating against the *kv.Store
// cmd.RootCmd wires up in its PersistentPreRunE.
package kvcli

import (
	"fmt"
	"strings"

	"github.com/ValentinKolb/bufkv/lib/kv"
	"github.com/spf13/cobra"
)

// Store is the shared *kv.Store every command in this package operates on.
// It is set by cmd.RootCmd's PersistentPreRunE before any RunE here fires.
var Store *kv.Store

var (
	GetCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Read the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runGet(args[0])
		},
	}

	SetCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Set the value for a key and flush immediately",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return runSet(args[0], args[1])
		},
	}

	RemoveCmd = &cobra.Command{
		Use:   "rm [key]",
		Short: "Remove a key and flush immediately",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runRemove(args[0])
		},
	}

	SubGetCmd = &cobra.Command{
		Use:   "sub-get [key] [dot.separated.path]",
		Short: "Read a value at a path inside a JSON value",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return runSubGet(args[0], args[1])
		},
	}

	SubSetCmd = &cobra.Command{
		Use:   "sub-set [key] [dot.separated.path] [value]",
		Short: "Write a value at a path inside a JSON value and flush immediately",
		Args:  cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			return runSubSet(args[0], args[1], args[2])
		},
	}

	FlushCmd = &cobra.Command{
		Use:   "flush",
		Short: "Drain all pending writes into one bulk backend call",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return runFlush()
		},
	}
)

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

func runGet(key string) error {
	value, found, err := Store.Get(key)
	if err != nil {
		return err
	}
	if !found {
		fmt.Printf("key=%s not found\n", key)
		return nil
	}
	fmt.Printf("key=%s value=%s\n", key, value)
	return nil
}

func runSet(key, value string) error {
	if err := Store.Set(key, []byte(value), nil); err != nil {
		return err
	}
	if err := Store.Flush(); err != nil {
		return err
	}
	fmt.Println("set successfully")
	return nil
}

func runRemove(key string) error {
	if err := Store.Remove(key, nil); err != nil {
		return err
	}
	if err := Store.Flush(); err != nil {
		return err
	}
	fmt.Println("removed successfully")
	return nil
}

func runSubGet(key, path string) error {
	value, found, err := Store.GetSub(key, splitPath(path))
	if err != nil {
		return err
	}
	if !found {
		fmt.Printf("key=%s path=%s not found\n", key, path)
		return nil
	}
	fmt.Printf("key=%s path=%s value=%s\n", key, path, value)
	return nil
}

func runSubSet(key, path, value string) error {
	if err := Store.SetSub(key, splitPath(path), []byte(value), nil); err != nil {
		return err
	}
	if err := Store.Flush(); err != nil {
		return err
	}
	fmt.Println("sub-set successfully")
	return nil
}

func runFlush() error {
	if err := Store.Flush(); err != nil {
		return err
	}
	fmt.Println("flushed successfully")
	return nil
}
