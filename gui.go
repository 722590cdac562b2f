//go:build gui

/*
* Main GUI application file
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
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/mappu/miqt/qt"

	"github.com/Gilah-EnE/sampen_scanner/internal/config"
	"github.com/Gilah-EnE/sampen_scanner/internal/logging"
	"github.com/Gilah-EnE/sampen_scanner/internal/scanner"
)

func runGUI(cfg *config.Config, root string, logger *logging.Logger) int {
	qt.NewQApplication(os.Args)
	window := qt.NewQMainWindow(nil)
	window.SetWindowTitle("Виявлення аномалій вибіркової ентропії файлів")
	window.SetMinimumSize2(800, 20)

	// Adding menu actions
	menuBar := window.MenuBar()

	fileMenu := qt.NewQMenu3("Файл")
	fileMenu.AddAction2(qt.QIcon_FromTheme("help-about"), "Про програму")
	fileMenu.AddAction2(qt.NewQIcon4(":/qt-project.org/qmessagebox/images/qtlogo-64.png"), "Про Qt")
	fileMenu.AddSeparator()
	fileMenu.AddAction2(qt.QIcon_FromTheme("application-exit"), "Вихід")
	menuBar.AddMenu(fileMenu)

	// Creating window layouts
	widget := qt.NewQWidget(nil)
	mainLayout := qt.NewQVBoxLayout(widget)
	dirPickerLayout := qt.NewQGridLayout(widget)
	parametersLayout := qt.NewQGridLayout(widget)
	resultsLayout := qt.NewQGridLayout(widget)

	// Directory picker button
	dirNameTextField := qt.NewQLineEdit(widget)
	dirNameTextField.SetPlaceholderText("Введіть шлях до каталогу для аналізу")
	dirNameTextField.SetText(root)
	dirPickerButton := qt.NewQPushButton4(qt.QIcon_FromTheme("folder-open"), "Вибір каталогу")

	dirPickerButton.OnClicked(func() {
		dirDialog := qt.NewQFileDialog4(widget, "Виберіть каталог для аналізу")
		dirDialog.SetFileMode(qt.QFileDialog__DirectoryOnly)

		if dirDialog.Exec() == int(qt.QDialog__Accepted) {
			selected := dirDialog.SelectedFiles()
			if len(selected) > 0 {
				dirNameTextField.SetText(selected[0])
			}
		}
	})
	startButton := qt.NewQPushButton4(qt.QIcon_FromTheme("media-playback-start"), "Аналіз")

	dirPickerLayout.AddWidget2(dirNameTextField.QWidget, 0, 0)
	dirPickerLayout.AddWidget2(dirPickerButton.QWidget, 0, 1)
	dirPickerLayout.AddWidget2(startButton.QWidget, 0, 2)

	// Parameter inputs
	newParameter := func(row int, label, value string) *qt.QLineEdit {
		edit := qt.NewQLineEdit(widget)
		edit.SetText(value)
		parametersLayout.AddWidget2(qt.NewQLabel3(label).QWidget, row, 0)
		parametersLayout.AddWidget2(edit.QWidget, row, 1)
		return edit
	}
	shingleEdit := newParameter(0, "Довжина шинглу k", strconv.Itoa(cfg.Scan.ShingleLength))
	comparisonEdit := newParameter(1, "Довжина шаблону m", strconv.Itoa(cfg.Scan.ComparisonLength))
	toleranceEdit := newParameter(2, "Допуск r", strconv.FormatFloat(cfg.Scan.Tolerance, 'f', -1, 64))
	thresholdEdit := newParameter(3, "Поріг z-оцінки", strconv.FormatFloat(cfg.Scan.Threshold, 'f', -1, 64))

	// Values display widgets
	newDisplay := func(row int, label string) *qt.QLineEdit {
		display := qt.NewQLineEdit(widget)
		display.SetReadOnly(true)
		resultsLayout.AddWidget2(qt.NewQLabel3(label).QWidget, row, 0)
		resultsLayout.AddWidget2(display.QWidget, row, 1)
		return display
	}
	filesDisplay := newDisplay(0, "Знайдено файлів")
	analyzedDisplay := newDisplay(1, "Проаналізовано файлів")
	skippedDisplay := newDisplay(2, "Пропущено файлів")
	groupsDisplay := newDisplay(3, "Груп з аномаліями")
	anomaliesDisplay := newDisplay(4, "Виявлено аномалій")

	// Combining sublayouts into the main layout
	mainLayout.AddLayout(dirPickerLayout.QLayout)
	mainLayout.AddLayout(parametersLayout.QLayout)
	mainLayout.AddLayout(resultsLayout.QLayout)

	// Log window (read-only)
	logWindow := qt.NewQTextEdit4("Виведення протоколу роботи методу", widget)
	logWindow.SetReadOnly(true)
	logWindow.SetFont(qt.NewQFont2("monospace"))
	mainLayout.AddWidget(logWindow.QWidget)

	showError := func(message string) {
		errorWindow := qt.NewQErrorMessage(widget)
		errorWindow.ShowMessage(message)
	}

	startButton.OnClicked(func() {
		logWindow.Clear()
		dirName := dirNameTextField.Text()
		if dirName == "" {
			showError("Шлях до каталогу порожній.")
			return
		}
		if stat, err := os.Stat(dirName); errors.Is(err, os.ErrNotExist) {
			showError("Запитаний каталог не знайдено. Перевірте правильність введення шляху та повторіть спробу.")
			return
		} else if err != nil || !stat.IsDir() {
			showError("Шлях вказує на файл, а не на каталог. Перевірте правильність введення шляху та повторіть спробу.")
			return
		}

		runCfg := *cfg
		var parseErr error
		parseInt := func(edit *qt.QLineEdit) int {
			v, err := strconv.Atoi(edit.Text())
			parseErr = errors.Join(parseErr, err)
			return v
		}
		parseFloat := func(edit *qt.QLineEdit) float64 {
			v, err := strconv.ParseFloat(edit.Text(), 64)
			parseErr = errors.Join(parseErr, err)
			return v
		}
		runCfg.Scan.ShingleLength = parseInt(shingleEdit)
		runCfg.Scan.ComparisonLength = parseInt(comparisonEdit)
		runCfg.Scan.Tolerance = parseFloat(toleranceEdit)
		runCfg.Scan.Threshold = parseFloat(thresholdEdit)
		if parseErr == nil {
			parseErr = runCfg.Validate()
		}
		if parseErr != nil {
			showError(fmt.Sprintf("Некоректні параметри аналізу: %s", parseErr))
			return
		}

		logWindow.Append(fmt.Sprintf("Каталог: %s, k = %d, m = %d, r = %g, поріг = %g\n",
			dirName, runCfg.Scan.ShingleLength, runCfg.Scan.ComparisonLength,
			runCfg.Scan.Tolerance, runCfg.Scan.Threshold))

		var out bytes.Buffer
		runCfg.Report.Format = "text"
		runCfg.Report.Color = false
		a, err := newApp(&runCfg, logger, &out)
		if err != nil {
			showError(fmt.Sprintf("Не вдалося запустити аналіз: %s", err))
			return
		}
		defer a.Close()

		res, err := a.scanner.Run(context.Background(), dirName)
		if err != nil {
			logger.Error("Scan failed", "root", dirName, "error", err)
			logWindow.Append(fmt.Sprintf("Помилка аналізу: %s", err))
			return
		}
		if err := a.publish(context.Background(), res); err != nil {
			logWindow.Append(fmt.Sprintf("Помилка формування звіту: %s", err))
			return
		}
		showResult(res, filesDisplay, analyzedDisplay, skippedDisplay, groupsDisplay, anomaliesDisplay)
		logWindow.Append(out.String())
	})

	// Window deployment
	window.SetCentralWidget(widget)
	window.Show()
	return qt.QApplication_Exec()
}

func showResult(res *scanner.Result, files, analyzed, skipped, groups, anomalies *qt.QLineEdit) {
	files.SetText(strconv.Itoa(res.Files))
	analyzed.SetText(strconv.Itoa(res.Analyzed()))
	skipped.SetText(strconv.Itoa(len(res.Skipped)))
	groups.SetText(strconv.Itoa(len(res.Groups)))
	anomalies.SetText(strconv.Itoa(res.Anomalies()))
}
