// Copyright (c) 2025 ModelPark
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Command modelpark-go drives the ModelPark CLI and relays requests to apps
// deployed on ModelPark.
package main

import "modelpark/cli/cmd"

func main() {
	cmd.Execute()
}
