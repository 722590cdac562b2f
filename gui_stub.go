//go:build !gui

/*
* Placeholder for builds without the Qt interface
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

package main

import (
	"github.com/Gilah-EnE/sampen_scanner/internal/config"
	"github.com/Gilah-EnE/sampen_scanner/internal/logging"
)

func runGUI(_ *config.Config, _ string, logger *logging.Logger) int {
	logger.Error("GUI support is not compiled in, rebuild with -tags gui")
	return 1
}
