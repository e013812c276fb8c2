package config

import (
	"fmt"
	"os"
)

// const dsn = "host=localhost user=postgres password=password dbname=taxireserve port=5432 sslmode=disable TimeZone=UTC"

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE)
	return dsn
}

func AdminSecret() string {
	return os.Getenv("ADMIN_SECRET")
}

func CronSecret() string {
	return os.Getenv("CRON_SECRET")
}

func MailFrom() string {
	return os.Getenv("MAIL_FROM")
}

var API_ENV = os.Getenv("API_ENV")

// Wall-clock input from the datetime picker, no offset.
const TIME_INPUT_FORMAT = "2006-01-02T15:04"

// Localized variant some clients submit.
const TIME_INPUT_FORMAT_EU = "02/01/2006, 15:04"

// Display format used in reminder emails.
const TIME_DISPLAY_FORMAT = "02/01/2006, 15:04"
