package domain

import "time"

type Country struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ISO2      string    `gorm:"column:iso2;type:char(2);not null;uniqueIndex:uk_countries_iso2" json:"iso2"`
	Name      string    `gorm:"size:100;not null;uniqueIndex:uk_countries_name" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Country) TableName() string { return "countries" }

type CountryFilter struct {
	ID   uint64
	ISO2 string
	Name string
}

func (f CountryFilter) Empty() bool { return f.ID == 0 && f.ISO2 == "" && f.Name == "" }
