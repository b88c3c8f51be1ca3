package main

import (
	"github.com/orderhub/order-svc/internal/app"
	"github.com/orderhub/order-svc/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
