package main

import "hrforms/internal/app/server"

func main() {
	server.Run()
}
