package malamute

/*------------------------------------------------------------------
 *
 * Purpose:	Diagnostic output and the received-packet log.
 *
 * Description:	Two kinds of output are produced:
 *
 *		- Human-readable monitoring and error text.  The monitor
 *		  lines go to stdout like a traditional TNC.  Errors and
 *		  debug go through a structured logger on stderr.
 *
 *		- An optional CSV file of received packets for later
 *		  processing.  Rather than the raw, sometimes rather
 *		  cryptic, format we write separated properties.
 *
 *------------------------------------------------------------------*/

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"
	"gopkg.in/natefinch/lumberjack.v2"
)

/*
 * Process-wide diagnostic logger.  This and the shutdown flag are the
 * only singletons; everything else is carried in context values.
 */

var dw_log = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: false,
})

/* Monitor output, one line per frame, same destination as a real TNC. */

func dw_printf(format string, a ...any) {
	fmt.Printf(format, a...)
}

/*------------------------------------------------------------------
 *
 * Name:	packet_log_s
 *
 * Purpose:	Save received packets to a CSV log file.
 *
 * Description:	The file is kept open and rotated by size so a
 *		long-running digipeater doesn't fill the disk.
 *
 *------------------------------------------------------------------*/

const log_time_format = "%Y-%m-%dT%H:%M:%SZ"

type packet_log_s struct {
	mutex  sync.Mutex
	out    *lumberjack.Logger
	csv    *csv.Writer
	tfmt   *strftime.Strftime
	now    func() time.Time
	header bool
}

func packet_log_init(path string) (*packet_log_s, error) {
	var tfmt, err = strftime.New(log_time_format)
	if err != nil {
		return nil, err
	}

	var pl = &packet_log_s{
		out: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
		},
		tfmt: tfmt,
		now:  time.Now,
	}
	pl.csv = csv.NewWriter(pl.out)
	return pl, nil
}

func (pl *packet_log_s) log_write(channel int, pp *packet_t, alevel alevel_t, retries retry_t) {
	if pl == nil {
		return
	}

	pl.mutex.Lock()
	defer pl.mutex.Unlock()

	if !pl.header {
		pl.csv.Write([]string{"utc", "chan", "source", "dest", "audio_level", "retries", "info"})
		pl.header = true
	}

	var info = pp.ax25_get_info()

	pl.csv.Write([]string{
		pl.tfmt.FormatString(pl.now().UTC()),
		strconv.Itoa(channel),
		pp.ax25_get_addr_with_ssid(AX25_SOURCE),
		pp.ax25_get_addr_with_ssid(AX25_DESTINATION),
		strconv.Itoa(alevel.rec),
		strconv.Itoa(int(retries)),
		string(info),
	})
	pl.csv.Flush()
}

func (pl *packet_log_s) log_term() {
	if pl == nil {
		return
	}
	pl.mutex.Lock()
	defer pl.mutex.Unlock()
	pl.csv.Flush()
	pl.out.Close()
}
