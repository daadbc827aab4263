package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"agrisense-http-service/config"
	"agrisense-http-service/models"
	"agrisense-http-service/routes"
	"agrisense-http-service/services"
)

func main() {
	if err := config.SetupLogger(); err != nil {
		fmt.Printf("failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	if err := godotenv.Load(); err != nil {
		config.Warning("no .env file loaded: %v", err)
		// environment variables may be set elsewhere, keep going
	} else {
		config.Info(".env file loaded")
	}

	cfg := config.GetConfig()

	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("unable to connect to database: %v", err)
	}

	switch cfg.DBMigrationMode {
	case "drop":
		log.Println("warning: running in drop mode, all tables will be dropped and recreated")
		if err := dropAndRecreateTables(db); err != nil {
			log.Fatalf("drop and recreate failed: %v", err)
		}
	case "alter":
		log.Println("running in alter mode, table structure will be adjusted to match the models")
		if err := advancedMigrate(db); err != nil {
			log.Fatalf("alter migration failed: %v", err)
		}
	default:
		log.Println("running in standard mode, only new columns and tables will be added")
		if err := autoMigrate(db); err != nil {
			log.Fatalf("auto migration failed: %v", err)
		}
	}

	if err := services.NewUserService(db, cfg).EnsureDefaultAdmin(); err != nil {
		config.Error("admin account setup failed: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.GetRedisAddr(),
		DB:   cfg.RedisDB,
	})

	r, serviceContainer := routes.SetupRouter(db, cfg, redisClient)

	// Sensor telemetry is optional; without a broker the fusion layer
	// simply runs from request-supplied readings.
	if cfg.MQTTBrokerURL != "" {
		sensorService := serviceContainer.GetSensorService()
		if err := sensorService.Connect(); err != nil {
			config.Error("MQTT connection failed, sensor telemetry disabled: %v", err)
		} else {
			defer sensorService.Disconnect()
		}
	}

	go func() {
		config.Info("server listening on http://localhost:%s", cfg.ServerPort)
		if err := r.Run(":" + cfg.ServerPort); err != nil {
			config.Error("server start failed: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	config.Info("shutting down")
}

// initDB opens the database connection
func initDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.GetDSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	config.Info("database connection established")
	return db, nil
}

func allModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Crop{},
		&models.AgronomyRecord{},
		&models.Alert{},
		&models.AIDiagnosis{},
		&models.SensorReading{},
	}
}

// autoMigrate adds new columns and tables, never dropping anything
func autoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(allModels()...); err != nil {
		return err
	}
	config.Info("database migration completed")
	return nil
}

// advancedMigrate adjusts existing tables to match the models. Foreign
// key checks are suspended so column changes on referenced tables work.
func advancedMigrate(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get DB connection: %w", err)
	}

	if _, err := sqlDB.Exec("SET FOREIGN_KEY_CHECKS = 0"); err != nil {
		log.Printf("disabling foreign key checks failed: %v", err)
	}
	defer sqlDB.Exec("SET FOREIGN_KEY_CHECKS = 1")

	return autoMigrate(db)
}

// dropAndRecreateTables rebuilds the schema from scratch
func dropAndRecreateTables(db *gorm.DB) error {
	if err := db.Migrator().DropTable(allModels()...); err != nil {
		return err
	}
	return autoMigrate(db)
}
