// Package util includes utility functions for file paths and output file names.
package util

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"regexp"
	"strings"
)

// ExpandUser expands '~' to user's home directory, if found, otherwise returns original path
func ExpandUser(path string) string {
	usr, err := user.Current()
	if err != nil {
		return path
	}
	if path == "~" {
		return usr.HomeDir
	} else if strings.HasPrefix(path, "~"+string(os.PathSeparator)) {
		return filepath.Join(usr.HomeDir, path[2:])
	}
	return path
}

// AbsPath returns absolute path after expanding '~' to user's home dir
func AbsPath(path string) (string, error) {
	return filepath.Abs(ExpandUser(path))
}

// FileExists checks if a regular file exists at the given path. It returns an
// error if the path refers to something other than a regular file.
func FileExists(path string) (exists bool, err error) {
	var fileInfo fs.FileInfo
	fileInfo, err = os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			err = nil
		}
		return
	}
	if !fileInfo.Mode().IsRegular() {
		err = fmt.Errorf("%s not a file", path)
		return
	}
	exists = true
	return
}

// DirectoryExists checks if a directory exists at the given path. It returns an
// error if the path refers to something other than a directory.
func DirectoryExists(path string) (exists bool, err error) {
	var fileInfo fs.FileInfo
	fileInfo, err = os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			err = nil
		}
		return
	}
	if !fileInfo.Mode().IsDir() {
		err = fmt.Errorf("%s not a directory", path)
		return
	}
	exists = true
	return
}

// CreateDirectoryIfNotExists creates a directory, and its parents, if it does not exist
func CreateDirectoryIfNotExists(dir string, perm os.FileMode) error {
	if exists, err := DirectoryExists(dir); err != nil {
		return err
	} else if exists {
		return nil
	}
	if err := os.MkdirAll(dir, perm); err != nil {
		return fmt.Errorf("failed to create directory: '%s', error: '%s'", dir, err.Error())
	}
	return nil
}

var unsafeFileNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// OutputBaseName derives a file system safe base name from an input path, e.g.,
// "/data/step 1/system tracker.csv" -> "system_tracker".
func OutputBaseName(inputPath string) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	base = strings.Trim(unsafeFileNameChars.ReplaceAllString(base, "_"), "_.")
	if base == "" {
		base = "card"
	}
	return base
}

// UniqueBaseNames returns the output base name of each input path, numbering
// repeated names, e.g., a/server.csv, b/server.csv -> server, server_2.
func UniqueBaseNames(inputPaths []string) []string {
	names := make([]string, len(inputPaths))
	seen := make(map[string]int)
	for i, path := range inputPaths {
		base := OutputBaseName(path)
		seen[base]++
		if seen[base] > 1 {
			base = fmt.Sprintf("%s_%d", base, seen[base])
		}
		names[i] = base
	}
	return names
}
