/*
NAME
  text.go - pyTivo key-value text rendering.

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
	"fmt"
	"io"
)

// WriteText renders the recording in the pyTivo metadata text format:
// one "key : value" line per populated field, list fields repeated
// once per entry. See http://pytivo.sourceforge.net/wiki/index.php/Metadata.
func (r *Recording) WriteText(w io.Writer) error {
	scalars := []struct {
		key, val string
	}{
		{"title", r.Title},
		{"seriesTitle", r.SeriesTitle},
		{"episodeTitle", r.EpisodeTitle},
		{"description", r.Description},
		{"isEpisode", r.IsEpisode},
		{"seriesId", r.SeriesID},
		{"episodeNumber", r.EpisodeNumber},
		{"originalAirDate", r.OriginalAirDate},
		{"movieYear", r.MovieYear},
		{"time", r.Time},
		{"showingBits", r.ShowingBits},
		{"tvRating", r.TVRating},
		{"starRating", r.StarRating},
		{"mpaaRating", r.MPAARating},
		{"colorCode", r.ColorCode},
		{"callsign", r.Callsign},
		{"displayMajorNumber", r.ChannelNumber},
		{"partCount", r.PartCount},
		{"partIndex", r.PartIndex},
	}
	for _, s := range scalars {
		if s.val == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s : %s\n", s.key, s.val); err != nil {
			return err
		}
	}

	lists := []struct {
		key  string
		vals []string
	}{
		{"vProgramGenre", r.Genres},
		{"vActor", r.Actors},
		{"vGuestStar", r.GuestStars},
		{"vDirector", r.Directors},
		{"vExecProducer", r.ExecProducers},
		{"vProducer", r.Producers},
		{"vWriter", r.Writers},
		{"vHost", r.Hosts},
		{"vChoreographer", r.Choreographers},
	}
	for _, l := range lists {
		for _, v := range l.vals {
			if _, err := fmt.Fprintf(w, "%s : %s\n", l.key, v); err != nil {
				return err
			}
		}
	}
	return nil
}
