package db

import (
	"fmt"
	"time"

	"github.com/go-pg/pg"
	"github.com/go-pg/pg/orm"
	"github.com/go-pg/pg/types"
	"github.com/nearbyflights/geobounds/bbox"
	log "github.com/sirupsen/logrus"
)

// Document is the stored extent of one GeoJSON document.
type Document struct {
	tableName struct{} `sql:"documents"`

	Id           int       `sql:"id,pk"`
	Name         string    `sql:"name,notnull"`
	Envelope     types.Q   `sql:"envelope,type:geometry(Polygon,4326)"`
	MinLongitude float64   `sql:"min_longitude"`
	MaxLongitude float64   `sql:"max_longitude"`
	MinLatitude  float64   `sql:"min_latitude"`
	MaxLatitude  float64   `sql:"max_latitude"`
	CreatedAt    time.Time `sql:"created_at,default:now()"`
}

func (d Document) Box() bbox.BoundingBox {
	return bbox.BoundingBox{
		MinLongitude: d.MinLongitude,
		MaxLongitude: d.MaxLongitude,
		MinLatitude:  d.MinLatitude,
		MaxLatitude:  d.MaxLatitude,
	}
}

type Client struct {
	database *pg.DB
}

type ClientOptions struct {
	Address  string
	User     string
	Password string
	Database string
}

func NewClient(options ClientOptions) Client {
	db := pg.Connect(&pg.Options{
		Addr:     options.Address,
		User:     options.User,
		Password: options.Password,
		Database: options.Database,
	})

	return Client{db}
}

// CreateSchema creates the documents table. PostGIS must already be enabled.
func (c *Client) CreateSchema() error {
	return c.database.CreateTable((*Document)(nil), &orm.CreateTableOptions{IfNotExists: true})
}

func (c *Client) SaveBounds(name string, box bbox.BoundingBox) error {
	document := Document{
		Name:         name,
		Envelope:     envelope(box),
		MinLongitude: box.MinLongitude,
		MaxLongitude: box.MaxLongitude,
		MinLatitude:  box.MinLatitude,
		MaxLatitude:  box.MaxLatitude,
	}

	_, err := c.database.Model(&document).Insert()
	if err != nil {
		return fmt.Errorf("error saving bounds of %s: %v", name, err)
	}

	log.Infof("saved bounds of %s: http://bboxfinder.com/#%v", name, box.String())

	return nil
}

// FindIntersecting returns the documents whose envelope intersects box.
func (c *Client) FindIntersecting(box bbox.BoundingBox) ([]Document, error) {
	var documents []Document
	err := c.database.Model(&documents).
		Column("id", "name", "min_longitude", "max_longitude", "min_latitude", "max_latitude", "created_at").
		Where("envelope && ?", envelope(box)).
		Order("created_at DESC").
		Select()
	if err != nil {
		return nil, err
	}

	log.Infof("found %v document(s)", len(documents))

	return documents, nil
}

func (c *Client) Close() {
	c.database.Close()
}

func envelope(box bbox.BoundingBox) types.Q {
	return types.Q(fmt.Sprintf("ST_MakeEnvelope(%v, %v, %v, %v, 4326)", box.MinLongitude, box.MinLatitude, box.MaxLongitude, box.MaxLatitude))
}
