package overlay

import (
	"fmt"

	"story-shorts-pipeline/02_schedule"
	"story-shorts-pipeline/types"
)

// Plan lays out the frame sequence for a scheduled conversation. Each
// utterance gets `substates` typing frames that evenly split the lead window
// before it starts, then a settled frame that lasts until the next lead
// window opens (or totalSec). The windows partition [0, totalSec]: every
// frame ends exactly where the next one starts.
//
// An idle frame fills [0, first lead window) when the first utterance starts
// later than lead. A lead that would swallow the previous settled frame is
// cut to half the gap between the two starts.
func Plan(utts []types.Utterance, substates int, lead, totalSec float64) ([]types.OverlayFrame, error) {
	if substates < 0 {
		return nil, fmt.Errorf("negative typing sub-states %d", substates)
	}
	if lead < 0 {
		return nil, fmt.Errorf("negative typing lead %.3f", lead)
	}
	if totalSec <= 0 {
		return nil, fmt.Errorf("total duration %.3f must be positive", totalSec)
	}
	if err := schedule.Validate(utts); err != nil {
		return nil, err
	}
	if n := len(utts); n > 0 && utts[n-1].Start >= totalSec {
		return nil, &schedule.ScheduleError{
			Index:  n - 1,
			Reason: fmt.Sprintf("starts at %.3f, not before the end of the timeline %.3f", utts[n-1].Start, totalSec),
		}
	}
	if substates == 0 {
		lead = 0
	}

	var frames []types.OverlayFrame
	add := func(f types.OverlayFrame) {
		f.Ordinal = len(frames)
		if len(frames) > 0 {
			f.Start = frames[len(frames)-1].End
		}
		frames = append(frames, f)
	}

	if len(utts) == 0 {
		add(types.OverlayFrame{Utterance: -1, Start: 0, End: totalSec})
		return frames, nil
	}

	for k, u := range utts {
		l := lead
		if k == 0 {
			if l > u.Start {
				l = u.Start
			}
		} else if gap := u.Start - utts[k-1].Start; l >= gap {
			l = gap / 2
		}
		leadStart := u.Start - l

		if k == 0 {
			if leadStart > 0 {
				add(types.OverlayFrame{Utterance: -1, Start: 0, End: leadStart})
			}
		} else {
			frames[len(frames)-1].End = leadStart
		}

		if l > 0 {
			step := l / float64(substates)
			for s := 1; s <= substates; s++ {
				end := leadStart + float64(s)*step
				if s == substates {
					end = u.Start
				}
				add(types.OverlayFrame{
					Utterance: k,
					Visible:   k,
					Step:      s,
					Steps:     substates,
					Start:     leadStart,
					End:       end,
				})
			}
		}

		add(types.OverlayFrame{
			Utterance: k,
			Visible:   k + 1,
			Start:     u.Start,
			End:       totalSec,
		})
	}
	return frames, nil
}
