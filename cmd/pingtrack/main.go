package main

import (
	"log"
	"os"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix(AppName + ": ")

	// cli.Exit的错误由urfave/cli处理退出码，其余错误在这里退出
	if err := createCliApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
