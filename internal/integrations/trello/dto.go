package trello

import "time"

// Форматы ответов Trello REST API.

type ListDTO struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IDBoard string `json:"idBoard"`
	Closed  bool   `json:"closed"`
}

func (l ListDTO) GetID() string { return l.ID }

type OptionDTO struct {
	ID    string `json:"id"`
	Value struct {
		Text string `json:"text"`
	} `json:"value"`
}

type CustomFieldDTO struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Type    string      `json:"type"`
	Options []OptionDTO `json:"options"`
}

func (f CustomFieldDTO) GetID() string { return f.ID }

type LabelDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type CustomFieldItemDTO struct {
	ID            string `json:"id"`
	IDCustomField string `json:"idCustomField"`
	IDValue       string `json:"idValue"`
	Value         struct {
		Text    string `json:"text"`
		Number  string `json:"number"`
		Date    string `json:"date"`
		Checked string `json:"checked"`
	} `json:"value"`
}

type CardDTO struct {
	ID               string               `json:"id"`
	Name             string               `json:"name"`
	Desc             string               `json:"desc"`
	IDList           string               `json:"idList"`
	Labels           []LabelDTO           `json:"labels"`
	DateLastActivity *time.Time           `json:"dateLastActivity"`
	CustomFieldItems []CustomFieldItemDTO `json:"customFieldItems"`
}

func (c CardDTO) GetID() string { return c.ID }
