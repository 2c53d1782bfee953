/*
NAME
  meta.go - parsing of recording metadata XML.

DESCRIPTION
  See Readme.md

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package meta parses the decrypted metadata chunks of a recording
// envelope and renders them in the pyTivo key-value text format.
package meta

import (
	"encoding/xml"

	"github.com/pkg/errors"
)

// Recording is the program information carried by a metadata chunk.
type Recording struct {
	Title           string
	SeriesTitle     string
	EpisodeTitle    string
	Description     string
	IsEpisode       string
	SeriesID        string
	EpisodeNumber   string
	OriginalAirDate string
	MovieYear       string
	Time            string
	ShowingBits     string
	TVRating        string
	StarRating      string
	MPAARating      string
	ColorCode       string
	Callsign        string
	ChannelNumber   string
	PartCount       string
	PartIndex       string

	Genres         []string
	Actors         []string
	GuestStars     []string
	Directors      []string
	ExecProducers  []string
	Producers      []string
	Writers        []string
	Hosts          []string
	Choreographers []string
}

// The TvBus document layout, reduced to the fields the pyTivo format
// carries.
type document struct {
	Showing showing `xml:"showing"`
}

type showing struct {
	ShowingBits attrValue `xml:"showingBits"`
	Time        string    `xml:"time"`
	PartCount   string    `xml:"partCount"`
	PartIndex   string    `xml:"partIndex"`
	TVRating    rated     `xml:"tvRating"`
	Program     program   `xml:"program"`
	Channel     channel   `xml:"channel"`
}

type program struct {
	Title           string      `xml:"title"`
	EpisodeTitle    string      `xml:"episodeTitle"`
	EpisodeNumber   string      `xml:"episodeNumber"`
	Description     string      `xml:"description"`
	IsEpisode       string      `xml:"isEpisode"`
	MovieYear       string      `xml:"movieYear"`
	OriginalAirDate string      `xml:"originalAirDate"`
	StarRating      rated       `xml:"starRating"`
	MPAARating      rated       `xml:"mpaaRating"`
	ColorCode       rated       `xml:"colorCode"`
	Series          series      `xml:"series"`
	Genres          elementList `xml:"vProgramGenre"`
	Actors          elementList `xml:"vActor"`
	GuestStars      elementList `xml:"vGuestStar"`
	Directors       elementList `xml:"vDirector"`
	ExecProducers   elementList `xml:"vExecProducer"`
	Producers       elementList `xml:"vProducer"`
	Writers         elementList `xml:"vWriter"`
	Hosts           elementList `xml:"vHost"`
	Choreographers  elementList `xml:"vChoreographer"`
}

type series struct {
	SeriesTitle string `xml:"seriesTitle"`
	UniqueID    string `xml:"uniqueId"`
}

type channel struct {
	MajorNumber string `xml:"displayMajorNumber"`
	Callsign    string `xml:"callsign"`
}

type elementList struct {
	Elements []string `xml:"element"`
}

// rated holds an enumerated field that carries both a display name
// and a numeric value attribute. The display name wins when present.
type rated struct {
	Value string `xml:"value,attr"`
	Name  string `xml:",chardata"`
}

func (r rated) String() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Value
}

type attrValue struct {
	Value string `xml:"value,attr"`
}

// Parse parses one decrypted metadata chunk.
func Parse(b []byte) (*Recording, error) {
	var doc document
	if err := xml.Unmarshal(b, &doc); err != nil {
		return nil, errors.Wrap(err, "could not parse metadata XML")
	}

	s := doc.Showing
	p := s.Program
	return &Recording{
		Title:           p.Title,
		SeriesTitle:     p.Series.SeriesTitle,
		EpisodeTitle:    p.EpisodeTitle,
		Description:     p.Description,
		IsEpisode:       p.IsEpisode,
		SeriesID:        p.Series.UniqueID,
		EpisodeNumber:   p.EpisodeNumber,
		OriginalAirDate: p.OriginalAirDate,
		MovieYear:       p.MovieYear,
		Time:            s.Time,
		ShowingBits:     s.ShowingBits.Value,
		TVRating:        s.TVRating.String(),
		StarRating:      p.StarRating.String(),
		MPAARating:      p.MPAARating.String(),
		ColorCode:       p.ColorCode.String(),
		Callsign:        s.Channel.Callsign,
		ChannelNumber:   s.Channel.MajorNumber,
		PartCount:       s.PartCount,
		PartIndex:       s.PartIndex,
		Genres:          p.Genres.Elements,
		Actors:          p.Actors.Elements,
		GuestStars:      p.GuestStars.Elements,
		Directors:       p.Directors.Elements,
		ExecProducers:   p.ExecProducers.Elements,
		Producers:       p.Producers.Elements,
		Writers:         p.Writers.Elements,
		Hosts:           p.Hosts.Elements,
		Choreographers:  p.Choreographers.Elements,
	}, nil
}
