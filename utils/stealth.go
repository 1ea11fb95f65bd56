package utils

import (
	"math/rand"
	"time"

	"github.com/playwright-community/playwright-go"
)

// RandomDelay pauses execution for a random time between min and max (milliseconds)
func RandomDelay(min, max int) {
	if min >= max {
		time.Sleep(time.Duration(min) * time.Millisecond)
		return
	}
	duration := time.Duration(rand.Intn(max-min)+min) * time.Millisecond
	time.Sleep(duration)
}

// MouseJiggle simulates random mouse movements
func MouseJiggle(page playwright.Page) {
	//stay inside the results column, away from the viewport edges
	x := float64(rand.Intn(700) + 200) //200-900
	y := float64(rand.Intn(500) + 150) //150-650

	//move
	page.Mouse().Move(x, y)
	RandomDelay(100, 300)
}

// SmoothScroll walks down a search-results list the way a reader would:
// a few tiles at a time with an occasional correction, then all the way
// down so lazy-loaded tiles render before the page is snapshotted.
func SmoothScroll(page playwright.Page) {
	//a job tile is roughly 300px tall, step 2-3 tiles at a time
	steps := rand.Intn(2) + 2
	for i := 0; i < steps; i++ {
		page.Mouse().Wheel(0, float64(rand.Intn(300)+600))
		RandomDelay(400, 900)
	}

	//scroll up a tiny bit (human-like correction)
	page.Mouse().Wheel(0, -150)
	RandomDelay(300, 700)

	//bottom of the list triggers the remaining lazy tiles
	page.Evaluate("window.scrollTo(0, document.body.scrollHeight)")
}
