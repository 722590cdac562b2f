/*
* Directory traversal
* Copyright (C) 2025  Artem Stefankiv
*
* This program is free software: you can redistribute it and/or modify
* it under the terms of the GNU General Public License as published by
* the Free Software Foundation, either version 3 of the License, or
* (at your option) any later version.
*
* This program is distributed in the hope that it will be useful,
* but WITHOUT ANY WARRANTY; without even the implied warranty of
* MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
* GNU General Public License for more details.
*
* You should have received a copy of the GNU General Public License
* along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */

package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Walk lists the regular files under root in lexical order. Unreadable
// entries are logged and skipped; only a failure on root itself is returned.
// Symbolic links to regular files are included when FollowSymlinks is set.
// Linked directories are never descended into.
func (s *Scanner) Walk(ctx context.Context, root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("walk %s: not a directory", root)
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return err
			}
			s.logger.Warn("Cannot access path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		switch {
		case d.IsDir():
			return nil
		case d.Type()&fs.ModeSymlink != 0:
			if !s.opts.FollowSymlinks {
				s.logger.Debug("Skipping symbolic link", "path", path)
				return nil
			}
			target, err := os.Stat(path)
			if err != nil {
				s.logger.Warn("Cannot resolve symbolic link", "path", path, "error", err)
				return nil
			}
			if target.Mode().IsRegular() {
				paths = append(paths, path)
			}
		case d.Type().IsRegular():
			paths = append(paths, path)
		default:
			s.logger.Debug("Skipping special file", "path", path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return paths, nil
}
