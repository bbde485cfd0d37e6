// taskt is a kanban board with a single active-task timer.
package main

import "github.com/antopolskiy/taskt/cmd"

func main() {
	cmd.Execute()
}
