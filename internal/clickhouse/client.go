package clickhouse

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"pier/config"
	"pier/models"
)

type Client struct {
	conn     driver.Conn
	database string
	logger   *zap.Logger
}

func NewClient(cfg config.ClickHouseConfig, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := &clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		DialTimeout:  30 * time.Second,
	}

	// 8443 is the TLS endpoint; the native port 9000 stays plaintext.
	if cfg.Port == 8443 {
		opts.TLS = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &Client{
		conn:     conn,
		database: cfg.Database,
		logger:   logger,
	}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// EnsureSchema creates the fact tables when they do not exist yet.
func (c *Client) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements(c.database) {
		if err := c.conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure clickhouse schema: %w", err)
		}
	}
	return nil
}

func schemaStatements(database string) []string {
	return []string{
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.order_facts (
			order_id         Int64,
			customer_id      Int64,
			date_key         String,
			source           LowCardinality(String),
			billing_zip_code FixedString(5),
			item_count       Int32,
			total_quantity   Int64,
			total_revenue    Float64,
			event_type       LowCardinality(String),
			event_time       DateTime64(3, 'UTC')
		) ENGINE = MergeTree
		ORDER BY (date_key, order_id)`, database),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.order_item_facts (
			order_item_id       Int64,
			order_id            Int64,
			item_id             Int64,
			date_key            String,
			modality            LowCardinality(String),
			source_warehouse_id Int64,
			source_store_id     Int64,
			dest_store_id       Int64,
			shipping_zip_code   String,
			quantity            Int64,
			revenue             Float64,
			event_type          LowCardinality(String),
			event_time          DateTime64(3, 'UTC')
		) ENGINE = MergeTree
		ORDER BY (date_key, order_id, order_item_id)`, database),
	}
}

// InsertOrderFact appends one row to order_facts.
func (c *Client) InsertOrderFact(ctx context.Context, fact models.OrderFact) error {
	query := fmt.Sprintf(`
		INSERT INTO %s.order_facts (
			order_id, customer_id, date_key, source, billing_zip_code,
			item_count, total_quantity, total_revenue, event_type, event_time
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.database)

	return c.conn.Exec(ctx, query,
		fact.OrderID,
		fact.CustomerID,
		fact.DateKey,
		fact.Source,
		fact.BillingZipCode,
		fact.ItemCount,
		fact.TotalQuantity,
		fact.TotalRevenue,
		fact.EventType,
		fact.EventTime,
	)
}

// InsertOrderItemFacts appends rows to order_item_facts in a single batch.
func (c *Client) InsertOrderItemFacts(ctx context.Context, facts []models.OrderItemFact) error {
	if len(facts) == 0 {
		return nil
	}

	batch, err := c.conn.PrepareBatch(ctx, fmt.Sprintf(`
		INSERT INTO %s.order_item_facts (
			order_item_id, order_id, item_id, date_key, modality,
			source_warehouse_id, source_store_id, dest_store_id, shipping_zip_code,
			quantity, revenue, event_type, event_time
		)`, c.database))
	if err != nil {
		return fmt.Errorf("prepare order item batch: %w", err)
	}

	for _, f := range facts {
		if err := batch.Append(
			f.OrderItemID,
			f.OrderID,
			f.ItemID,
			f.DateKey,
			f.Modality,
			f.SourceWarehouseID,
			f.SourceStoreID,
			f.DestStoreID,
			f.ShippingZipCode,
			f.Quantity,
			f.Revenue,
			f.EventType,
			f.EventTime,
		); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("append order item %d: %w", f.OrderItemID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send order item batch: %w", err)
	}
	c.logger.Debug("order item facts written", zap.Int("rows", len(facts)))
	return nil
}
