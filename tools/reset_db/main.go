package main

import (
	"flag"
	"fmt"
	"log"

	"event-social/config"
	dbPkg "event-social/pkg/db"
)

// 子表在前
var tables = []string{"message", "event_attendee", "event", "friendship", "user"}

func main() {
	yes := flag.Bool("yes", false, "跳过确认")
	flag.Parse()

	// 配置文件路径可用 CONFIG_FILE 覆盖
	cfg := config.LoadConfig()

	orm, err := dbPkg.InitDB(cfg.Database, false)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer dbPkg.CloseDB()

	fmt.Println("Database connected successfully")
	fmt.Printf("Database: %s\n", cfg.Database.Database)

	if !*yes {
		fmt.Printf("\nWARNING: This operation will CLEAR ALL DATA in tables %v!\n", tables)
		fmt.Print("Type 'YES' to confirm: ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "YES" {
			fmt.Println("Operation cancelled")
			return
		}
	}

	// Disable FK checks to avoid constraint issues
	orm.Exec("SET FOREIGN_KEY_CHECKS=0")
	defer orm.Exec("SET FOREIGN_KEY_CHECKS=1")

	for _, table := range tables {
		fmt.Printf("Clearing table %s... ", table)
		if err := orm.Exec(fmt.Sprintf("DELETE FROM `%s`", table)).Error; err != nil {
			fmt.Printf("Failed: %v\n", err)
		} else {
			fmt.Println("Success")
		}
	}

	// Reset auto-increment ids（user、event 使用字符串主键）
	fmt.Println("\nResetting auto-increment IDs...")
	for _, table := range []string{"message", "event_attendee", "friendship"} {
		fmt.Printf("Resetting %s auto-increment... ", table)
		if err := orm.Exec(fmt.Sprintf("ALTER TABLE `%s` AUTO_INCREMENT = 1", table)).Error; err != nil {
			fmt.Printf("Failed: %v\n", err)
		} else {
			fmt.Println("Success")
		}
	}

	fmt.Println("\nDatabase reset completed!")
	fmt.Println("All table data cleared, table structure preserved")
	fmt.Println("The next server start will import the seed file again")
}
