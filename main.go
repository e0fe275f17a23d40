package main

import "github.com/luckymoturi/AttendanceProject/cmd"

func main() {
	cmd.Execute()
}
