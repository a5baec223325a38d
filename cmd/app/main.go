package main

import (
	"context"

	"github.com/Cleo-Systems/elevate-extract/internal/service"
)

func main() {
	ctx := context.Background()

	svc, err := service.NewExtractService()
	if err != nil {
		panic(err)
	}

	err = svc.Start(ctx)
	if err != nil {
		panic(err)
	}
}
