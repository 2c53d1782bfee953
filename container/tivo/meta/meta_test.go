/*
NAME
  meta_test.go - tests for metadata parsing and text rendering.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package meta

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const testXML = `<?xml version="1.0" encoding="utf-8"?>
<TvBusMarshalledRecording xmlns="http://tivo.com/developer/xml/ilias/TvBusMarshalledRecording">
  <showing>
    <showingBits value="4099"/>
    <time>2015-02-21T02:00:00Z</time>
    <tvRating value="4">TV-PG</tvRating>
    <channel>
      <displayMajorNumber>702</displayMajorNumber>
      <callsign>KQED HD</callsign>
    </channel>
    <program>
      <title>Nature</title>
      <episodeTitle>Owl Power</episodeTitle>
      <episodeNumber>3304</episodeNumber>
      <isEpisode>true</isEpisode>
      <description>Owls are studied with the latest camera technology.</description>
      <originalAirDate>2015-02-18T00:00:00Z</originalAirDate>
      <series>
        <seriesTitle>Nature</seriesTitle>
        <uniqueId>SH000377043</uniqueId>
      </series>
      <vProgramGenre>
        <element>Documentary</element>
        <element>Animals</element>
      </vProgramGenre>
      <vDirector>
        <element>Smith|Joe</element>
      </vDirector>
    </program>
  </showing>
</TvBusMarshalledRecording>`

func TestParse(t *testing.T) {
	got, err := Parse([]byte(testXML))
	if err != nil {
		t.Fatalf("unexpected error from Parse: %v", err)
	}

	want := &Recording{
		Title:           "Nature",
		SeriesTitle:     "Nature",
		EpisodeTitle:    "Owl Power",
		Description:     "Owls are studied with the latest camera technology.",
		IsEpisode:       "true",
		SeriesID:        "SH000377043",
		EpisodeNumber:   "3304",
		OriginalAirDate: "2015-02-18T00:00:00Z",
		Time:            "2015-02-21T02:00:00Z",
		ShowingBits:     "4099",
		TVRating:        "TV-PG",
		Callsign:        "KQED HD",
		ChannelNumber:   "702",
		Genres:          []string{"Documentary", "Animals"},
		Directors:       []string{"Smith|Joe"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("recording mismatch (-want +got):\n%s", diff)
	}
}

func TestParseMalformed(t *testing.T) {
	if _, err := Parse([]byte("<unclosed")); err == nil {
		t.Error("expected error from Parse, got nil")
	}
}

func TestWriteText(t *testing.T) {
	r, err := Parse([]byte(testXML))
	if err != nil {
		t.Fatalf("unexpected error from Parse: %v", err)
	}

	var out bytes.Buffer
	if err := r.WriteText(&out); err != nil {
		t.Fatalf("unexpected error from WriteText: %v", err)
	}

	want := `title : Nature
seriesTitle : Nature
episodeTitle : Owl Power
description : Owls are studied with the latest camera technology.
isEpisode : true
seriesId : SH000377043
episodeNumber : 3304
originalAirDate : 2015-02-18T00:00:00Z
time : 2015-02-21T02:00:00Z
showingBits : 4099
tvRating : TV-PG
callsign : KQED HD
displayMajorNumber : 702
vProgramGenre : Documentary
vProgramGenre : Animals
vDirector : Smith|Joe
`
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Errorf("text mismatch (-want +got):\n%s", diff)
	}
}
