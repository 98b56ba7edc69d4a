package main

import (
	"github.com/davmoren/credverify/config"
	"github.com/davmoren/credverify/internal/app"
)

func main() {

	// create and initialize the app
	app, err := app.NewApp(config.CONFIG_PATH)
	if err != nil {
		panic(err)
	}

	// run the app
	// This will start the server, serve the login endpoint, and block until
	// the listener fails or the process receives a shutdown signal.
	err = app.Run()
	if err != nil {
		panic(err)
	}
}
