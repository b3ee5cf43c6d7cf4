package main

import (
	"image"

	fyne "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
)

// showChart opens a window with the rendered chart and blocks until it is closed.
func showChart(title string, img image.Image, width, height int) {
	a := app.NewWithID("com.snake-evolution.fitchart")
	w := a.NewWindow(title)

	chartImg := canvas.NewImageFromImage(img)
	chartImg.FillMode = canvas.ImageFillContain
	chartImg.SetMinSize(fyne.NewSize(float32(width)/2, float32(height)/2))

	w.SetContent(container.NewStack(chartImg))
	w.Resize(fyne.NewSize(float32(width), float32(height)))
	w.ShowAndRun()
}
